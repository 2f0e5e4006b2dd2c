package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for league hook scripts.
// Single-goroutine access only (the league dispatch goroutine). A nil
// *Engine is valid and makes every hook a no-op.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all .lua files from the given
// directory. A missing directory is not an error; it yields an engine
// with no hooks registered.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load league scripts: %w", err)
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) Close() {
	if e != nil {
		e.vm.Close()
	}
}

// SeasonSummary is the data handed to the on_season_end hook.
type SeasonSummary struct {
	ID           int32
	Name         string
	WinnerTag    string
	WinnerPoints int64
}

// OnSeasonEnd calls the Lua on_season_end hook, if defined. Informational
// only; script errors are logged and swallowed.
func (e *Engine) OnSeasonEnd(s SeasonSummary) {
	if e == nil {
		return
	}
	fn := e.vm.GetGlobal("on_season_end")
	if fn == lua.LNil {
		return
	}

	tbl := e.vm.NewTable()
	tbl.RawSetString("id", lua.LNumber(s.ID))
	tbl.RawSetString("name", lua.LString(s.Name))
	tbl.RawSetString("winner_tag", lua.LString(s.WinnerTag))
	tbl.RawSetString("winner_points", lua.LNumber(s.WinnerPoints))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, tbl); err != nil {
		e.log.Warn("on_season_end hook failed", zap.Error(err))
	}
}

// OnRewardGrant calls the Lua on_reward_grant hook, if defined. The hook
// may return false to veto the grant, or a table of replacement command
// strings. Absent hook or script error leaves the commands unchanged.
func (e *Engine) OnRewardGrant(clanTag string, position int, commands []string) ([]string, bool) {
	if e == nil {
		return commands, true
	}
	fn := e.vm.GetGlobal("on_reward_grant")
	if fn == lua.LNil {
		return commands, true
	}

	cmdTbl := e.vm.NewTable()
	for _, c := range commands {
		cmdTbl.Append(lua.LString(c))
	}

	err := e.vm.CallByParam(
		lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LString(clanTag), lua.LNumber(position), cmdTbl,
	)
	if err != nil {
		e.log.Warn("on_reward_grant hook failed", zap.Error(err))
		return commands, true
	}

	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	switch v := ret.(type) {
	case lua.LBool:
		return commands, bool(v)
	case *lua.LTable:
		var out []string
		v.ForEach(func(_, val lua.LValue) {
			if s, ok := val.(lua.LString); ok {
				out = append(out, string(s))
			}
		})
		return out, true
	default:
		return commands, true
	}
}

// FormatTag calls the Lua format_tag hook, if defined, to post-process a
// player tag's display text. Falls back to the input text.
func (e *Engine) FormatTag(playerID, text string) string {
	if e == nil {
		return text
	}
	fn := e.vm.GetGlobal("format_tag")
	if fn == lua.LNil {
		return text
	}

	err := e.vm.CallByParam(
		lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LString(playerID), lua.LString(text),
	)
	if err != nil {
		e.log.Warn("format_tag hook failed", zap.Error(err))
		return text
	}

	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	if s, ok := ret.(lua.LString); ok {
		return string(s)
	}
	return text
}
