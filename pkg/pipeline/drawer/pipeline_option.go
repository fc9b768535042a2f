package drawer

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/cicd-assembler/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	dir string

	mu       sync.Mutex
	rendered map[string][]byte
}

func (pd *pipelineDrawer) New() error {
	err := os.MkdirAll(pd.dir, 0o755) //nolint:gosec // graphs are meant to be read
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", pd.dir)
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStage(pipelineName string, parent, stage *model.StageSpec) error {
	return nil
}

func (pd *pipelineDrawer) AfterCompile(pg *model.PipelineGraph, elapsed time.Duration) error {
	var buf bytes.Buffer

	err := pd.Draw(&buf, pg)
	if err != nil {
		return errors.Wrapf(err, "unable to draw pipeline %s", pg.Name)
	}

	pd.mu.Lock()
	defer pd.mu.Unlock()

	pd.rendered[pg.Name] = buf.Bytes()

	return nil
}

// Finish writes one <name>.dot file per compiled pipeline.
func (pd *pipelineDrawer) Finish() error {
	pd.mu.Lock()
	defer pd.mu.Unlock()

	names := make([]string, 0, len(pd.rendered))
	for name := range pd.rendered {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		err := os.WriteFile(filepath.Join(pd.dir, name+".dot"), pd.rendered[name], 0o644) //nolint:gosec // graphs are meant to be read
		if err != nil {
			return errors.Wrapf(err, "unable to write graph of %s", name)
		}
	}

	return nil
}

// PipelineDrawer returns an option drawing every compiled pipeline into dir.
func PipelineDrawer(drawer Drawer, dir string) model.CompileOption {
	return &pipelineDrawer{
		Drawer:   drawer,
		dir:      dir,
		rendered: make(map[string][]byte),
	}
}
