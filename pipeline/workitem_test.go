// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package pipeline

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{NotStarted, "NotStarted"},
		{InProgress, "InProgress"},
		{Done, "Done"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorkItemRequiredContentOnlyWhenInProgress(t *testing.T) {
	item := NewWorkItem("a.lua")
	if item.RequiredContent() != "" {
		t.Error("a NotStarted item has no RequiredContent")
	}

	item.suspend(2, "b.lua")
	if got := item.RequiredContent(); got != "b.lua" {
		t.Errorf("got %q, want b.lua", got)
	}

	item.State = Done
	if item.RequiredContent() != "" {
		t.Error("a Done item must not report RequiredContent")
	}
}

func TestWorkItemResumeClearsProgress(t *testing.T) {
	item := NewWorkItem("a.lua")
	item.suspend(3, "b.lua")

	p := item.resume()
	if p.NextRuleIndex != 3 || p.RequiredContent != "b.lua" {
		t.Errorf("resume() = %+v, want {3, b.lua}", p)
	}
	if item.progress != (Progress{}) {
		t.Errorf("progress = %+v, want zero value after resume", item.progress)
	}
}
