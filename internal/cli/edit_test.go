package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/optkit/flowplan/pkg/graph"
	"github.com/optkit/flowplan/pkg/model"
	"github.com/optkit/flowplan/pkg/pipeline"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyEnter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

// typeInput feeds a string through the prompt one rune at a time and commits.
func typeInput(m tea.Model, s string) tea.Model {
	for _, r := range s {
		if r == ' ' {
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		} else {
			m, _ = m.Update(keyRunes(string(r)))
		}
	}
	m, _ = m.Update(keyEnter())
	return m
}

func newTestEditor() EditorModel {
	return NewEditorModel(graph.NewStore(), pipeline.NewRunner(nil, nil, nil), model.Transportation, "")
}

func TestEditorAddNodes(t *testing.T) {
	var m tea.Model = newTestEditor()

	m, _ = m.Update(keyRunes("s"))
	if m.(EditorModel).mode != modePrompt {
		t.Fatal("expected prompt mode after 's'")
	}
	m = typeInput(m, "20")

	em := m.(EditorModel)
	if em.mode != modeBrowse {
		t.Fatal("expected browse mode after commit")
	}
	if em.store.NodeCount() != 1 {
		t.Fatalf("node count = %d, want 1", em.store.NodeCount())
	}
	if !em.store.Nodes()[0].IsSupply() {
		t.Error("expected a supply node")
	}

	m, _ = m.Update(keyRunes("d"))
	m = typeInput(m, "20")
	em = m.(EditorModel)
	if em.store.NodeCount() != 2 {
		t.Fatalf("node count = %d, want 2", em.store.NodeCount())
	}
}

func TestEditorBadAmountKeepsStore(t *testing.T) {
	var m tea.Model = newTestEditor()

	m, _ = m.Update(keyRunes("s"))
	m = typeInput(m, "abc")

	em := m.(EditorModel)
	if em.store.NodeCount() != 0 {
		t.Errorf("node count = %d, want 0 after bad input", em.store.NodeCount())
	}
	if em.status == "" {
		t.Error("expected an error status")
	}
}

func TestEditorAddEdgeAndSolve(t *testing.T) {
	editor := newTestEditor()
	sup, err := editor.store.AddNode(true, 20)
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	dem, err := editor.store.AddNode(false, 20)
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	var m tea.Model = editor
	m, _ = m.Update(keyRunes("e"))
	m = typeInput(m, sup+" "+dem+" 4")

	em := m.(EditorModel)
	if em.store.EdgeCount() != 1 {
		t.Fatalf("edge count = %d, want 1 (status %q)", em.store.EdgeCount(), em.status)
	}

	m, _ = m.Update(keyEnter())
	em = m.(EditorModel)
	if em.report == "" {
		t.Fatalf("expected a report after solve (status %q)", em.status)
	}
	if !strings.Contains(em.status, "80") {
		t.Errorf("status %q should mention total cost 80", em.status)
	}
}

func TestEditorDeleteNode(t *testing.T) {
	editor := newTestEditor()
	if _, err := editor.store.AddNode(true, 10); err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	var m tea.Model = editor
	m, _ = m.Update(keyRunes("x"))

	em := m.(EditorModel)
	if em.store.NodeCount() != 0 {
		t.Errorf("node count = %d, want 0 after delete", em.store.NodeCount())
	}
}

func TestEditorToggleKind(t *testing.T) {
	var m tea.Model = newTestEditor()

	m, _ = m.Update(keyRunes("t"))
	if m.(EditorModel).kind != model.Assignment {
		t.Error("expected assignment after toggle")
	}
	m, _ = m.Update(keyRunes("t"))
	if m.(EditorModel).kind != model.Transportation {
		t.Error("expected transportation after second toggle")
	}
}

func TestEditorPromptEscape(t *testing.T) {
	var m tea.Model = newTestEditor()

	m, _ = m.Update(keyRunes("s"))
	m, _ = m.Update(keyRunes("9"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	em := m.(EditorModel)
	if em.mode != modeBrowse {
		t.Error("esc should return to browse mode")
	}
	if em.store.NodeCount() != 0 {
		t.Error("esc should discard the pending input")
	}
}
