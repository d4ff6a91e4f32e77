package game

import (
	"os"
	"path/filepath"

	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/google/shlex"
	"github.com/tidwall/gjson"
)

// HandlerFile is the descriptor file name inside a handler directory.
const HandlerFile = "handler.json"

// LoadHandler parses dir/handler.json. The directory name is the game id.
//
//	{
//	  "name": "Celeste",
//	  "exec": "Celeste.exe",
//	  "args": "--windowed -lang en",
//	  "env": {"DXVK_ASYNC": "1"},
//	  "win": true,
//	  "symlink_dir": true,
//	  "path_gameroot": "~/Games/Celeste",
//	  "save_paths": ["~/.local/share/Celeste"],
//	  "save_template": "template",
//	  "steam_appid": "504230"
//	}
func LoadHandler(dir string) (Handler, error) {
	id := filepath.Base(dir)
	data, err := os.ReadFile(filepath.Join(dir, HandlerFile))
	if err != nil {
		return Handler{}, errors.Wrapf(err, "failed to read handler %s", id)
	}
	if !gjson.ValidBytes(data) {
		return Handler{}, errors.NewValidationError("invalid JSON").WithField(filepath.Join(id, HandlerFile))
	}
	doc := gjson.ParseBytes(data)

	exec := doc.Get("exec").String()
	if exec == "" {
		return Handler{}, errors.NewValidationError("exec is required").WithField(filepath.Join(id, HandlerFile))
	}

	args, err := shlex.Split(doc.Get("args").String())
	if err != nil {
		return Handler{}, errors.NewValidationError(err.Error()).WithField("args").WithValue(doc.Get("args").String())
	}

	env := map[string]string{}
	doc.Get("env").ForEach(func(k, v gjson.Result) bool {
		env[k.String()] = v.String()
		return true
	})

	var saves []string
	for _, p := range doc.Get("save_paths").Array() {
		if p.String() != "" {
			saves = append(saves, ExpandHome(p.String()))
		}
	}

	name := doc.Get("name").String()
	if name == "" {
		name = id
	}

	desc := Descriptor{
		ID:           id,
		Name:         name,
		AppID:        doc.Get("steam_appid").String(),
		Windows:      doc.Get("win").Bool(),
		IsolateSaves: len(saves) > 0,
		SymlinkDir:   doc.Get("symlink_dir").Bool(),
		InstallDir:   ExpandHome(doc.Get("path_gameroot").String()),
		SavePaths:    saves,
	}
	if desc.InstallDir == "" {
		desc.InstallDir = dir
	}
	if t := doc.Get("save_template").String(); t != "" {
		desc.Template = filepath.Join(dir, t)
	}

	return Handler{Dir: dir, Desc: desc, Exec: exec, Args: args, Env: env}, nil
}
