// Package script loads Lua lookup scripts, caching compiled bytecode per path.
package script

import (
	"fmt"
	"sync"

	libs "github.com/metafates/mangal-lua-libs"
	"github.com/mwembed/mwembed/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

var bytecodeCache sync.Map

// NewState creates a Lua state with the extended standard library preloaded.
func NewState() *lua.LState {
	state := lua.NewState()
	libs.Preload(state)
	return state
}

// PreCompileAndLoad executes the script at scriptPath inside L, compiling it only once per path.
func PreCompileAndLoad(L *lua.LState, scriptPath string) error {
	if cachedProto, exists := bytecodeCache.Load(scriptPath); exists {
		fn := L.NewFunctionFromProto(cachedProto.(*lua.FunctionProto))
		L.Push(fn)
		return L.PCall(0, lua.MultRet, nil)
	}

	file, err := filesystem.API().Open(scriptPath)
	if err != nil {
		return err
	}
	defer file.Close()

	chunk, err := parse.Parse(file, scriptPath)
	if err != nil {
		return err
	}

	proto, err := lua.Compile(chunk, scriptPath)
	if err != nil {
		return err
	}

	bytecodeCache.Store(scriptPath, proto)

	fn := L.NewFunctionFromProto(proto)
	L.Push(fn)
	return L.PCall(0, lua.MultRet, nil)
}

// Forget drops the compiled bytecode of scriptPath so the next load re-reads it.
func Forget(scriptPath string) {
	bytecodeCache.Delete(scriptPath)
}

// RequireFunctions checks that every name is a global function in L.
func RequireFunctions(L *lua.LState, name string, fns ...string) error {
	for _, fn := range fns {
		if L.GetGlobal(fn).Type() != lua.LTFunction {
			return fmt.Errorf("function %s is required but not defined in %s", fn, name)
		}
	}
	return nil
}
