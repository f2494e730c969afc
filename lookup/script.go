package lookup

import (
	"fmt"
	"path/filepath"

	"github.com/mwembed/mwembed/constant"
	"github.com/mwembed/mwembed/filesystem"
	"github.com/mwembed/mwembed/internal/script"
	"github.com/mwembed/mwembed/log"
	"github.com/mwembed/mwembed/media"
	"github.com/mwembed/mwembed/sched"
	"github.com/mwembed/mwembed/util"
	"github.com/samber/mo"
	lua "github.com/yuin/gopher-lua"
)

// Script resolves keys by calling the Resolve function of a Lua script.
// Scripts run off the scheduler and have the mangal standard library available.
type Script struct {
	sched sched.Scheduler
	path  string
	name  string
}

// LoadScript validates the script at path.
func LoadScript(s sched.Scheduler, path string) (*Script, error) {
	state := script.NewState()
	defer state.Close()

	if err := script.PreCompileAndLoad(state, path); err != nil {
		return nil, err
	}

	name := util.FileStem(path)
	if err := script.RequireFunctions(state, name, constant.ResolveFn); err != nil {
		return nil, err
	}

	return &Script{sched: s, path: path, name: name}, nil
}

// LoadScripts loads every .lua file in dir, in name order. Broken scripts are skipped and logged.
func LoadScripts(s sched.Scheduler, dir string) ([]*Script, error) {
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var scripts []*Script
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}

		sc, err := LoadScript(s, filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Warnf("skipping lookup script %s: %v", entry.Name(), err)
			continue
		}
		scripts = append(scripts, sc)
	}
	return scripts, nil
}

// Name returns the script name.
func (sc *Script) Name() string {
	return sc.name
}

// Lookup runs the script on its own goroutine and posts the result.
func (sc *Script) Lookup(key string, done func(mo.Result[Resolution])) {
	go func() {
		res, err := sc.resolve(key)
		sc.sched.Post(func() { done(result(res, err)) })
	}()
}

func (sc *Script) resolve(key string) (Resolution, error) {
	state := script.NewState()
	defer state.Close()

	if err := script.PreCompileAndLoad(state, sc.path); err != nil {
		return Resolution{}, fmt.Errorf("lookup %s: %w", sc.name, err)
	}

	err := state.CallByParam(lua.P{
		Fn:      state.GetGlobal(constant.ResolveFn),
		NRet:    1,
		Protect: true,
	}, lua.LString(key))
	if err != nil {
		return Resolution{}, fmt.Errorf("lookup %s: %w", sc.name, err)
	}

	ret := state.Get(-1)
	state.Pop(1)

	table, ok := ret.(*lua.LTable)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %s (%s)", ErrNotFound, key, sc.name)
	}

	return fromTable(table), nil
}

func fromTable(table *lua.LTable) Resolution {
	source := media.NewSource(
		lua.LVAsString(table.RawGetString("uri")),
		lua.LVAsString(table.RawGetString("type")),
	)
	source.URLTimeEncoding = lua.LVAsBool(table.RawGetString("url_time_encoding"))

	res := Resolution{Source: source}
	if poster := lua.LVAsString(table.RawGetString("poster")); poster != "" {
		res.Poster = mo.Some(poster)
	}
	if duration, ok := table.RawGetString("duration").(lua.LNumber); ok {
		res.Duration = mo.Some(float64(duration))
		source.DurationHint = res.Duration
	}
	return res
}
