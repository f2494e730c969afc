package script

import (
	"testing"

	"github.com/mwembed/mwembed/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	lua "github.com/yuin/gopher-lua"
)

func TestPreCompileAndLoad(t *testing.T) {
	Convey("Given a script on the in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		path := "/lookups/hello.lua"
		lo.Must0(filesystem.API().WriteFile(path, []byte(`function Resolve(key) return key end`), 0644))
		defer Forget(path)

		state := NewState()
		defer state.Close()

		Convey("It loads and defines its globals", func() {
			So(PreCompileAndLoad(state, path), ShouldBeNil)
			So(RequireFunctions(state, "hello", "Resolve"), ShouldBeNil)
			So(RequireFunctions(state, "hello", "Missing"), ShouldNotBeNil)
		})

		Convey("Bytecode is reused after the file changes", func() {
			So(PreCompileAndLoad(state, path), ShouldBeNil)
			lo.Must0(filesystem.API().WriteFile(path, []byte(`syntax error here`), 0644))

			other := NewState()
			defer other.Close()
			So(PreCompileAndLoad(other, path), ShouldBeNil)
			So(other.GetGlobal("Resolve").Type(), ShouldEqual, lua.LTFunction)

			Forget(path)
			So(PreCompileAndLoad(other, path), ShouldNotBeNil)
		})

		Convey("Missing files fail", func() {
			So(PreCompileAndLoad(state, "/lookups/missing.lua"), ShouldNotBeNil)
		})
	})
}
