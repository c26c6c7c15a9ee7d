package fsbackend

import (
	"os"

	"github.com/mwillard/gitodb/backend"
	"github.com/mwillard/gitodb/ginternals"
	"golang.org/x/xerrors"
	"gopkg.in/ini.v1"
)

// setDefaultCfg set and persists the default git configuration for
// the repository
func (b *Backend) setDefaultCfg() error {
	cfg := ini.Empty()

	// Core
	core, err := cfg.NewSection(backend.CfgCore)
	if err != nil {
		return xerrors.Errorf("could not create core section: %w", err)
	}
	coreCfg := map[string]string{
		backend.CfgCoreFormatVersion:     "0",
		backend.CfgCoreFileMode:          "false",
		backend.CfgCoreBare:              "false",
		backend.CfgCoreLogAllRefUpdate:   "true",
		backend.CfgCoreIgnoreCase:        "true",
		backend.CfgCorePrecomposeUnicode: "true",
	}
	for k, v := range coreCfg {
		if _, err := core.NewKey(k, v); err != nil {
			return xerrors.Errorf("could not set %s: %w", k, err)
		}
	}

	w, err := b.fs.OpenFile(ginternals.ConfigPath(b.cfg), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return xerrors.Errorf("could not open config file: %w", err)
	}
	defer w.Close() //nolint:errcheck // best-effort close, nothing actionable if it fails

	if _, err := cfg.WriteTo(w); err != nil {
		return xerrors.Errorf("could not write config file: %w", err)
	}
	return nil
}
