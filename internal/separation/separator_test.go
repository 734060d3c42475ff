package separation

import (
	"context"
	"errors"
	"testing"

	"github.com/voxproc/voxd/pkg/logger"
)

type stemModel struct {
	rate  int
	stems Stems
	err   error

	gotWav  [][]float32
	gotRate int
}

func (m *stemModel) SampleRate() int { return m.rate }

func (m *stemModel) SeparateStems(_ context.Context, wav [][]float32, sampleRate int) (Stems, error) {
	m.gotWav = wav
	m.gotRate = sampleRate
	return m.stems, m.err
}

type sourceModel struct {
	rate    int
	sources []string
	out     [][][][]float32
	err     error
}

func (m *sourceModel) SampleRate() int   { return m.rate }
func (m *sourceModel) Sources() []string { return m.sources }

func (m *sourceModel) Apply(_ context.Context, batch [][][]float32) ([][][][]float32, error) {
	return m.out, m.err
}

func TestNewAdapterUnsupportedModel(t *testing.T) {
	if _, err := NewAdapter(struct{}{}, logger.Nop()); err == nil {
		t.Fatal("expected error for model with no separation capability")
	}
}

func TestSeparateStemModel(t *testing.T) {
	model := &stemModel{
		rate: 44100,
		stems: Stems{
			"vocals": {{1, 1}, {3, 3}},
			"drums":  {{9, 9}, {9, 9}},
		},
	}
	a, err := NewAdapter(model, logger.Nop())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}

	vocals, rate, err := a.Separate(context.Background(), []float32{0.5, -0.5}, 16000)
	if err != nil {
		t.Fatalf("Separate: %v", err)
	}
	if rate != 44100 {
		t.Fatalf("rate: want=44100 got=%d", rate)
	}
	// Mono input is duplicated into two channels for the model.
	if len(model.gotWav) != 2 || model.gotRate != 16000 {
		t.Fatalf("model input: channels=%d rate=%d", len(model.gotWav), model.gotRate)
	}
	// Channel-averaged: (1+3)/2.
	if len(vocals) != 2 || vocals[0] != 2 || vocals[1] != 2 {
		t.Fatalf("vocals: got %v", vocals)
	}
}

func TestSeparateStemModelMissingVocals(t *testing.T) {
	model := &stemModel{rate: 44100, stems: Stems{"drums": {{1}, {1}}}}
	a, _ := NewAdapter(model, logger.Nop())

	vocals, _, err := a.Separate(context.Background(), []float32{0.5}, 16000)
	if err != nil {
		t.Fatalf("missing vocals stem must not be an error, got %v", err)
	}
	if len(vocals) != 0 {
		t.Fatalf("expected empty track, got %v", vocals)
	}
}

func TestSeparateStemModelError(t *testing.T) {
	model := &stemModel{rate: 44100, err: errors.New("boom")}
	a, _ := NewAdapter(model, logger.Nop())

	if _, _, err := a.Separate(context.Background(), []float32{0.5}, 16000); err == nil {
		t.Fatal("model error must propagate")
	}
}

func TestSeparateSourceModel(t *testing.T) {
	model := &sourceModel{
		rate:    44100,
		sources: []string{"drums", "bass", "vocals"},
		out: [][][][]float32{{
			{{9, 9}, {9, 9}},
			{{8, 8}, {8, 8}},
			{{2, 4}, {4, 2}},
		}},
	}
	a, err := NewAdapter(model, logger.Nop())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}

	vocals, rate, err := a.Separate(context.Background(), []float32{0.5, -0.5}, 16000)
	if err != nil {
		t.Fatalf("Separate: %v", err)
	}
	if rate != 44100 {
		t.Fatalf("rate: want=44100 got=%d", rate)
	}
	if len(vocals) != 2 || vocals[0] != 3 || vocals[1] != 3 {
		t.Fatalf("vocals: got %v", vocals)
	}
}

func TestSeparateSourceModelNoVocals(t *testing.T) {
	model := &sourceModel{
		rate:    44100,
		sources: []string{"drums", "bass"},
		out:     [][][][]float32{{{{1}, {1}}, {{2}, {2}}}},
	}
	a, _ := NewAdapter(model, logger.Nop())

	vocals, _, err := a.Separate(context.Background(), []float32{0.5}, 16000)
	if err != nil {
		t.Fatalf("absent vocals source must not be an error, got %v", err)
	}
	if len(vocals) != 0 {
		t.Fatalf("expected empty track, got %v", vocals)
	}
}

func TestSeparateSourceModelEmptyBatch(t *testing.T) {
	model := &sourceModel{rate: 44100, sources: []string{"vocals"}}
	a, _ := NewAdapter(model, logger.Nop())

	vocals, _, err := a.Separate(context.Background(), []float32{0.5}, 16000)
	if err != nil {
		t.Fatalf("empty model output must not be an error, got %v", err)
	}
	if len(vocals) != 0 {
		t.Fatalf("expected empty track, got %v", vocals)
	}
}
