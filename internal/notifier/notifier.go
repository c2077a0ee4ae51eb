// Package notifier forwards reward events from short-lived CLI commands to a
// running `habitquest serve` process. The server announces itself with a
// lockfile holding "port|pid|secret".
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
)

var findProcessFunc = ps.FindProcess

// ErrServerNotRunning is returned when no live server owns the lockfile
var ErrServerNotRunning = errors.New("habitquest server is not running")

// Payload is the body of POST /api/events
type Payload struct {
	Events []models.RewardEvent `json:"events"`
}

// Lock is the parsed content of the server lockfile
type Lock struct {
	Port   int
	PID    int
	Secret string
}

// LockPath returns the lockfile location inside the config directory
func LockPath(configDir string) string {
	return filepath.Join(configDir, constants.ServerLockfileName)
}

// WriteLock records the running server so CLI commands can find it
func WriteLock(path string, port int, secret string) error {
	if secret == "" {
		return errors.New("secret cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	content := fmt.Sprintf("%d|%d|%s", port, os.Getpid(), secret)
	return os.WriteFile(path, []byte(content), 0600)
}

// RemoveLock deletes the lockfile; a missing file is not an error
func RemoveLock(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ReadLock parses the lockfile and checks that its pid is a live habitquest process
func ReadLock(path string) (Lock, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Lock{}, ErrServerNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return Lock{}, errors.New("lockfile is malformed")
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Lock{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return Lock{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return Lock{}, errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return Lock{}, errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return Lock{}, ErrServerNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return Lock{}, fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.AppName, process.Executable())
	}

	return Lock{Port: port, PID: pid, Secret: secret}, nil
}

// Notifier posts reward events to the local server
type Notifier struct {
	lockPath string
	client   *http.Client
}

// New returns a notifier that looks for the server lockfile in configDir
func New(configDir string) *Notifier {
	return &Notifier{
		lockPath: LockPath(configDir),
		client:   &http.Client{Timeout: constants.NotifyTimeout},
	}
}

// Notify sends events to the server. It returns ErrServerNotRunning when
// there is nobody to tell, which callers usually ignore.
func (n *Notifier) Notify(ctx context.Context, events []models.RewardEvent) error {
	if len(events) == 0 {
		return nil
	}
	lock, err := ReadLock(n.lockPath)
	if err != nil {
		return err
	}
	return n.send(ctx, fmt.Sprintf("http://127.0.0.1:%d/api/events", lock.Port), lock.Secret, Payload{Events: events})
}

func (n *Notifier) send(ctx context.Context, url, secret string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.ServerSecretHeader, secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK || res.StatusCode == http.StatusAccepted {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}
