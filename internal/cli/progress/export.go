package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/models"
)

// exportDoc is the file written by export and read by import
type exportDoc struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Summary    engine.Summary  `json:"summary"`
	Snapshot   models.Snapshot `json:"snapshot"`
}

type ExportCmd struct {
	Format string `short:"f" help:"Output format." enum:"json,yaml" default:"json"`
	Output string `short:"o" help:"Write to this file instead of stdout."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	e, err := ctx.LoadEngine()
	if err != nil {
		return err
	}
	doc := exportDoc{
		Version:    constants.Version,
		ExportedAt: ctx.CurrentTime().UTC(),
		Summary:    e.Summary(),
		Snapshot:   e.Snapshot(),
	}

	w := ctx.Writer()
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := encode(w, c.Format, doc); err != nil {
		return err
	}
	if c.Output != "" {
		ctx.Printf("Exported %d habits and %d XP awards to %s\n", len(doc.Snapshot.Habits), len(doc.Snapshot.XPLog), c.Output)
	}
	return nil
}

// encode writes doc as JSON, or as YAML with the same field names
func encode(w io.Writer, format string, doc exportDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if format != "yaml" {
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func decode(path string) (exportDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return exportDoc{}, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var generic interface{}
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return exportDoc{}, fmt.Errorf("invalid YAML: %w", err)
		}
		if data, err = json.Marshal(generic); err != nil {
			return exportDoc{}, err
		}
	}

	var doc exportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return exportDoc{}, fmt.Errorf("invalid export file: %w", err)
	}
	return doc, nil
}

type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"File written by export (.json or .yaml)."`
	Yes  bool   `short:"y" help:"Do not ask before replacing current progress."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	doc, err := decode(c.File)
	if err != nil {
		return err
	}
	// rebuilding the engine rejects habits, tasks and awards the operations would refuse
	e, err := engine.FromSnapshot(doc.Snapshot)
	if err != nil {
		return fmt.Errorf("export file is not a valid progress state: %w", err)
	}

	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Replace current progress with %d habits and %d XP from %s?", len(doc.Snapshot.Habits), e.XPTotal(), filepath.Base(c.File)))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Import cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.SaveEngine(e); err != nil {
		return err
	}
	ctx.Printf("Imported progress: %d XP, level %d\n", e.XPTotal(), e.Summary().Level)
	return nil
}
