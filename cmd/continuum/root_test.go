package main

import "testing"

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"run":      false,
		"validate": false,
		"license":  false,
		"version":  false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q", versionCmd.Use)
	}
	if versionCmd.Run == nil {
		t.Error("versionCmd.Run should not be nil")
	}
}

func TestRootFlags(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
	if rootCmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("--verbose flag missing")
	}
}
