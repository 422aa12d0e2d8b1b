package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/netgen/internal/constants"
)

const sampleModel = `
dimensions:
  brain: 1
  choices: 2
receptors:
  - name: GABA
    params: {Tau: 5, RevPot: -70}
  - name: AMPA
    params: {Tau: 2}
population_defaults:
  N: 250
  C: 0.5
channel:
  dim: brain
  populations:
    - name: I0
      params: {C: 0.2}
      receptors:
        - name: GABA
        - name: AMPA
          ext_con: 800
          ext_eff: 2
          ext_freq: 1.6
  channels:
    - dim: choices
      populations:
        - name: E
          receptors:
            - name: AMPA
connections:
  - src: E
    targ: I0
    receptor: [AMPA, GABA]
    pattern: all
    efficacy: [0.05, 2]
    name: excite
handles:
  - name: sensory
    targ: E
    path: [choices]
    receptor: AMPA
    connectivity: 800
    efficacy: 2.1
handle_events:
  - label: right stimulus
    time: 100
    handle: sensory
    indices: [0]
    freq: 3.0884
time_limit: 800
transforms:
  - op: popscale
    factor: 0.1
`

const orderedModel = `
dimensions: {side: 1}
receptors:
  - name: NMDA
    params: {Tau: 100, Beta: 0.062, Alpha: 0.5}
population_defaults:
  N: 800
  C: 0.5
  Taum: 20
channel:
  dim: side
  populations:
    - name: P
      params: {g_T: 0.06, N: 2500}
      receptors: [{name: NMDA}]
  channels:
    - dim: side
      populations:
        - name: Q
          params: {Alpha: 1, Taum: 10}
time_limit: 10
`

func TestDecodeModel_KeyOrder(t *testing.T) {
	m, err := DecodeModel(strings.NewReader(orderedModel))
	if err != nil {
		t.Fatalf("DecodeModel: %v", err)
	}

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"defaults", m.DefaultsOrder, []string{"N", "C", "Taum"}},
		{"P data appends new keys", m.Channel.Population("P").DataOrder, []string{"N", "C", "Taum", "g_T"}},
		{"nested Q data", m.Channel.Population("Q").DataOrder, []string{"N", "C", "Taum", "Alpha"}},
		{"receptor extras follow standard keys", m.Channel.Population("P").Receptors[0].Order,
			[]string{"Tau", "RevPot", "FreqExt", "FreqExtSD", "MeanExtEff", "MeanExtCon", "Beta", "Alpha"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if strings.Join(tt.got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("order = %v, want %v", tt.got, tt.want)
			}
		})
	}

	p := m.Channel.Population("P")
	if got := p.Data.OrderedKeys(p.DataOrder); strings.Join(got, ",") != "N,C,Taum,g_T" {
		t.Errorf("OrderedKeys = %v", got)
	}
}

func TestParamsOrderedKeys(t *testing.T) {
	p := Params{"b": 1, "a": 2, "z": 3, "y": 4}
	tests := []struct {
		name  string
		order []string
		want  string
	}{
		{"no order is lexical", nil, "a,b,y,z"},
		{"declared first then lexical", []string{"z", "b"}, "z,b,a,y"},
		{"missing and repeated names skipped", []string{"q", "y", "y"}, "y,a,b,z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Join(p.OrderedKeys(tt.order), ","); got != tt.want {
				t.Errorf("OrderedKeys(%v) = %s, want %s", tt.order, got, tt.want)
			}
		})
	}
}

func TestDecodeModel(t *testing.T) {
	m, err := DecodeModel(strings.NewReader(sampleModel))
	if err != nil {
		t.Fatalf("DecodeModel: %v", err)
	}

	if m.Dimensions["choices"] != 2 {
		t.Errorf("expected choices cardinality 2, got %d", m.Dimensions["choices"])
	}
	if m.TimeLimit != 800 {
		t.Errorf("expected time limit 800, got %v", m.TimeLimit)
	}

	i0 := m.Channel.Population("I0")
	if i0 == nil {
		t.Fatal("population I0 not found")
	}
	if i0.Data["N"] != 250 || i0.Data["C"] != 0.2 {
		t.Errorf("expected defaults overlaid by params, got %v", i0.Data)
	}
	if len(i0.Receptors) != 2 || i0.Receptors[0].Name != "GABA" {
		t.Fatalf("expected receptors in declaration order, got %+v", i0.Receptors)
	}
	ampa := i0.Receptors.Get("AMPA")
	if ampa.Params[constants.ReceptorMeanExtCon] != 800 {
		t.Errorf("expected MeanExtCon override 800, got %v", ampa.Params[constants.ReceptorMeanExtCon])
	}
	if ampa.Params[constants.ReceptorFreqExt] != 1.6 {
		t.Errorf("expected FreqExt override 1.6, got %v", ampa.Params[constants.ReceptorFreqExt])
	}
	if ampa.Params[constants.ReceptorTau] != 2 {
		t.Errorf("expected library Tau 2, got %v", ampa.Params[constants.ReceptorTau])
	}
	if _, ok := ampa.Params[constants.ReceptorFreqExtSD]; !ok {
		t.Error("expected standard receptor keys to be present")
	}

	// Overrides are per population, the library entry stays untouched.
	e := m.Channel.Population("E")
	if got := e.Receptors.Get("AMPA").Params[constants.ReceptorMeanExtCon]; got != 0 {
		t.Errorf("expected E's AMPA MeanExtCon 0, got %v", got)
	}

	if len(m.Connections) != 1 {
		t.Fatalf("expected 1 connection statement, got %d", len(m.Connections))
	}
	c := m.Connections[0]
	if !c.Receptor.IsList() || c.Receptor.Len() != 2 {
		t.Errorf("expected receptor list of 2, got %+v", c.Receptor)
	}
	if c.Connectivity.IsSet() {
		t.Error("expected connectivity unset")
	}

	if len(m.Handles) != 1 || m.Handles[0].Path[0] != "choices" {
		t.Errorf("unexpected handles: %+v", m.Handles)
	}
	if len(m.HandleEvents) != 1 || m.HandleEvents[0].Indices[0] != 0 {
		t.Errorf("unexpected handle events: %+v", m.HandleEvents)
	}
	if len(m.Transforms) != 1 || m.Transforms[0].Factor != 0.1 {
		t.Errorf("unexpected transforms: %+v", m.Transforms)
	}
}

func TestDecodeModel_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "empty document"},
		{"no channel", "dimensions: {brain: 1}", "channel is required"},
		{"unknown key", "channel: {dim: brain}\nbogus: 1", "bogus"},
		{
			"unknown receptor",
			"channel:\n  dim: brain\n  populations:\n    - name: P\n      receptors: [{name: NMDA}]",
			"unknown receptor",
		},
		{
			"duplicate receptor",
			"receptors: [{name: A}, {name: A}]\nchannel: {dim: brain}",
			"declared twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeModel(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(sampleModel), 0600); err != nil {
		t.Fatalf("write model: %v", err)
	}
	m, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if m.Channel.Dim != "brain" {
		t.Errorf("expected root dim brain, got %q", m.Channel.Dim)
	}

	if _, err := LoadModel(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestInstanceID(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		want    string
	}{
		{"P", nil, "P"},
		{"P", []int{0}, "P_0"},
		{"LIP", []int{1, 0}, "LIP_1_0"},
	}
	for _, tt := range tests {
		if got := InstanceID(tt.name, tt.indices); got != tt.want {
			t.Errorf("InstanceID(%q, %v) = %q, want %q", tt.name, tt.indices, got, tt.want)
		}
	}
}

func TestParamsCloneIsIndependent(t *testing.T) {
	p := Params{"N": 10}
	c := p.Clone()
	c["N"] = 20
	if p["N"] != 10 {
		t.Error("mutating clone changed original")
	}
	var nilParams Params
	if nilParams.Clone() == nil {
		t.Error("clone of nil should be an empty map")
	}
}
