package modhost

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/randalmurphal/modhost/pkg/modhost/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lifecycleModule builds a factory whose module records every lifecycle hook.
func lifecycleModule(name string, tr *tracker, reloadErr error) Factory {
	return func() (Module, error) {
		return NewModule(name, Hooks{
			OnLoad:           func() error { tr.record("load:" + name); return nil },
			OnUnload:         func() { tr.record("unload:" + name) },
			OnResourcesReady: func() { tr.record("ready:" + name) },
			OnReloadConfig: func(cfg config.Config) error {
				tr.record("reload:" + name + ":" + cfg.String("mode", "default"))
				return reloadErr
			},
		}), nil
	}
}

func newTestController(factories []Factory, opts ...Option) (*Registry, *Controller) {
	opts = append([]Option{quiet}, opts...)
	reg := NewRegistry(opts...)
	return reg, NewController(reg, factories, opts...)
}

func TestController_LoadModules(t *testing.T) {
	tr := &tracker{}
	settings := config.Static(config.New(map[string]any{
		"Radar": map[string]any{"mode": "wide"},
	}))
	reg, ctrl := newTestController([]Factory{
		lifecycleModule("Radar", tr, nil),
		lifecycleModule("AutoSave", tr, nil),
	}, WithSettings(settings))

	assert.Equal(t, StateUnloaded, ctrl.State())
	require.NoError(t, ctrl.LoadModules(t.Context()))

	assert.Equal(t, StateLoaded, ctrl.State())
	assert.Equal(t, []string{"radar", "autosave"}, reg.Names())
	assert.Equal(t, []string{
		"load:Radar", "reload:Radar:wide",
		"load:AutoSave", "reload:AutoSave:default",
	}, tr.all())
}

func TestController_OnLoadSeesItselfRegistered(t *testing.T) {
	var visible bool
	var reg *Registry
	reg, ctrl := newTestController([]Factory{func() (Module, error) {
		return NewModule("self", Hooks{OnLoad: func() error {
			visible = reg.Has("self")
			return nil
		}}), nil
	}})

	require.NoError(t, ctrl.LoadModules(t.Context()))
	assert.True(t, visible)
}

func TestController_LoadTwice(t *testing.T) {
	tr := &tracker{}
	reg, ctrl := newTestController([]Factory{lifecycleModule("a", tr, nil)})

	require.NoError(t, ctrl.LoadModules(t.Context()))
	err := ctrl.LoadModules(t.Context())

	assert.ErrorIs(t, err, ErrAlreadyLoaded)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, tr.count("load:a"))
}

func TestController_LoadFailuresIsolated(t *testing.T) {
	tr := &tracker{}
	boom := errors.New("boom")
	reg, ctrl := newTestController([]Factory{
		lifecycleModule("a", tr, nil),
		func() (Module, error) { return nil, boom },
		func() (Module, error) {
			return NewModule("refuses", Hooks{
				OnLoad:   func() error { return errors.New("no resources") },
				OnUnload: func() { tr.record("unload:refuses") },
			}), nil
		},
		func() (Module, error) { panic("constructor bug") },
		func() (Module, error) { return nil, nil },
		lifecycleModule("b", tr, nil),
	})

	err := ctrl.LoadModules(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var me *ModuleError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "factory[1]", me.Module)
	assert.Equal(t, "construct", me.Op)

	var hf *HandlerFault
	assert.ErrorAs(t, err, &hf)

	assert.Equal(t, StateLoaded, ctrl.State())
	assert.Equal(t, []string{"a", "b"}, reg.Names())
	assert.Equal(t, 1, tr.count("unload:refuses"))
}

func TestController_UnloadModules(t *testing.T) {
	tr := &tracker{}
	reg, ctrl := newTestController([]Factory{
		lifecycleModule("a", tr, nil),
		lifecycleModule("b", tr, nil),
		lifecycleModule("c", tr, nil),
	})
	require.NoError(t, ctrl.LoadModules(t.Context()))
	tr.calls = nil

	ctrl.UnloadModules(t.Context())

	assert.Equal(t, StateUnloaded, ctrl.State())
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, []string{"unload:a", "unload:b", "unload:c"}, tr.all())

	// Unloading again is harmless and does not repeat hooks.
	ctrl.UnloadModules(t.Context())
	assert.Len(t, tr.all(), 3)

	// A full cycle can load again.
	require.NoError(t, ctrl.LoadModules(t.Context()))
	assert.Equal(t, 3, reg.Len())
}

func TestController_UnloadRemovesModulesAddedByUnloadHooks(t *testing.T) {
	reg := NewRegistry(quiet)
	ctrl := NewController(reg, []Factory{func() (Module, error) {
		return NewModule("Parent", Hooks{
			OnUnload: func() { reg.Add(NewModule("Orphan", Hooks{})) },
		}), nil
	}}, quiet)
	require.NoError(t, ctrl.LoadModules(t.Context()))

	ctrl.UnloadModules(t.Context())
	assert.Equal(t, 0, reg.Len())
}

func TestController_UnloadStopsWhenHooksKeepRegistering(t *testing.T) {
	reg := NewRegistry(quiet)
	generation := 0
	var spawn func() Module
	spawn = func() Module {
		generation++
		return NewModule(fmt.Sprintf("gen-%d", generation), Hooks{
			OnUnload: func() { reg.Add(spawn()) },
		})
	}
	ctrl := NewController(reg, []Factory{func() (Module, error) { return spawn(), nil }}, quiet)
	require.NoError(t, ctrl.LoadModules(t.Context()))

	ctrl.UnloadModules(t.Context())

	assert.Equal(t, StateUnloaded, ctrl.State())
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, maxUnloadPasses+1, generation)
}

func TestController_ReloadConfig(t *testing.T) {
	tr := &tracker{}
	mode := "first"
	settings := func() (config.Config, error) {
		return config.New(map[string]any{
			"a": map[string]any{"mode": mode},
			"c": map[string]any{"mode": mode},
		}), nil
	}
	reg, ctrl := newTestController([]Factory{
		lifecycleModule("A", tr, nil),
		lifecycleModule("B", tr, errors.New("bad value")),
		func() (Module, error) {
			return NewModule("Panicky", Hooks{
				OnReloadConfig: func(config.Config) error { panic("reload bug") },
			}), nil
		},
		lifecycleModule("C", tr, nil),
	}, WithSettings(settings))

	_ = ctrl.LoadModules(t.Context())
	require.Equal(t, 4, reg.Len())
	tr.calls = nil

	mode = "second"
	err := ctrl.ReloadConfig(t.Context())
	require.Error(t, err)

	// B and Panicky fail; A and C are still notified.
	assert.Equal(t, []string{"reload:A:second", "reload:B:default", "reload:C:second"}, tr.all())
	assert.Equal(t, 4, reg.Len(), "reload does not remove modules")

	var me *ModuleError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "reload", me.Op)
}

func TestController_ReloadSettingsError(t *testing.T) {
	tr := &tracker{}
	fail := false
	settings := func() (config.Config, error) {
		if fail {
			return config.Config{}, errors.New("unreadable")
		}
		return config.New(nil), nil
	}
	_, ctrl := newTestController([]Factory{lifecycleModule("a", tr, nil)}, WithSettings(settings))
	require.NoError(t, ctrl.LoadModules(t.Context()))
	tr.calls = nil

	fail = true
	err := ctrl.ReloadConfig(t.Context())
	assert.Error(t, err)
	assert.Empty(t, tr.all())
}

func TestController_ReloadWhileUnloaded(t *testing.T) {
	tr := &tracker{}
	reg, ctrl := newTestController(nil)
	reg.Add(NewModule("direct", Hooks{OnReloadConfig: func(config.Config) error {
		tr.record("reload")
		return nil
	}}))

	err := ctrl.ReloadConfig(t.Context())
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Empty(t, tr.all())
}

func TestController_ResourcesReady(t *testing.T) {
	tr := &tracker{}
	_, ctrl := newTestController([]Factory{lifecycleModule("a", tr, nil)})

	require.NoError(t, ctrl.LoadModules(t.Context()))
	require.NoError(t, ctrl.ResourcesReady(t.Context()))
	assert.Equal(t, 1, tr.count("ready:a"))

	assert.ErrorIs(t, ctrl.ResourcesReady(t.Context()), ErrResourcesAlreadyReady)
	assert.Equal(t, 1, tr.count("ready:a"))
}

func TestController_ResourcesReadyBeforeLoad(t *testing.T) {
	tr := &tracker{}
	_, ctrl := newTestController([]Factory{lifecycleModule("a", tr, nil)})

	require.NoError(t, ctrl.ResourcesReady(t.Context()))
	require.NoError(t, ctrl.LoadModules(t.Context()))

	assert.Equal(t, []string{"load:a", "ready:a", "reload:a:default"}, tr.all())
}

func TestController_ReloadFromHandler(t *testing.T) {
	tr := &tracker{}
	reg, ctrl := newTestController([]Factory{lifecycleModule("a", tr, nil)})
	d := NewDispatcher(reg, quiet)
	require.NoError(t, ctrl.LoadModules(t.Context()))
	reg.Add(NewModule("trigger", Hooks{OnKey: func(*KeyEvent) {
		_ = ctrl.ReloadConfig(context.Background())
	}}))
	tr.calls = nil

	d.Key(t.Context(), &KeyEvent{})
	assert.Equal(t, []string{"reload:a:default"}, tr.all())
}

func TestHost(t *testing.T) {
	tr := &tracker{}
	h := New([]Factory{lifecycleModule("a", tr, nil)}, quiet)

	require.NoError(t, h.Controller.LoadModules(t.Context()))
	assert.True(t, h.Registry.Has("A"))
	assert.Equal(t, InputIgnored, h.Dispatcher.UserInput(t.Context(), "a", "x", false))

	h.Controller.UnloadModules(t.Context())
	assert.Equal(t, InputNoModule, h.Dispatcher.UserInput(t.Context(), "a", "x", false))
}

func TestStateAndKindStrings(t *testing.T) {
	assert.Equal(t, "unloaded", StateUnloaded.String())
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "unknown", State(9).String())

	assert.Equal(t, "key", KindKey.String())
	assert.Equal(t, "oog_draw", KindOOGDraw.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestKeyEventParam(t *testing.T) {
	ev := &KeyEvent{Param: 3 | 1<<24 | 1<<29 | 1<<30}
	assert.Equal(t, uint16(3), ev.Repeat())
	assert.True(t, ev.Extended())
	assert.True(t, ev.AltDown())
	assert.True(t, ev.WasDown())

	plain := &KeyEvent{Param: 1}
	assert.False(t, plain.Extended())
	assert.False(t, plain.AltDown())
	assert.False(t, plain.WasDown())
}

func TestPacketEventID(t *testing.T) {
	assert.Equal(t, byte(0), (&PacketEvent{}).ID())
	assert.Equal(t, byte(0xAE), (&PacketEvent{Data: []byte{0xAE, 1, 2}}).ID())
}
