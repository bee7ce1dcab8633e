package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/david/opportunity-finder/internal/config"
	"github.com/david/opportunity-finder/internal/models"
)

type fakeModel struct {
	reply string
	err   error
	block bool

	calls   int
	lastReq JSONRequest
}

func (f *fakeModel) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func sampleItem(i int) map[string]any {
	return map[string]any{
		"sector":                "Hostelería",
		"businessType":          fmt.Sprintf("Cafetería de especialidad %d", i),
		"managerEmail":          fmt.Sprintf("ana.gomez%d@cafe.es", i),
		"urgentNeed":            "Rotación de personal",
		"aiSolutionName":        "BaristaBot",
		"aiSolutionDescription": "Asistente de formación para baristas.",
		"appCreationPrompt":     "Construye un asistente que use el manual interno <docs>.",
		"proposalEmail": map[string]any{
			"subject": "Propuesta de IA para su cafetería",
			"body":    "Hola Ana,\n\nAtentamente,\nMoris Polanco, CEO",
		},
		"acceptanceProbability": map[string]any{
			"rating":        "Alta",
			"justification": "Alto ticket medio.",
			"score":         9,
		},
		"easeOfCreation":     7,
		"opportunityForGain": 8,
	}
}

func encode(t *testing.T, items ...map[string]any) string {
	t.Helper()
	data, err := json.Marshal(items)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func newTestGenerator(t *testing.T, m Model, timeout time.Duration) *Generator {
	t.Helper()
	g, err := NewGenerator(m, config.DefaultProfile(), timeout, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func requireFailure(t *testing.T, err error, target error) {
	t.Helper()
	var gf *GenerationFailure
	if !errors.As(err, &gf) {
		t.Fatalf("expected GenerationFailure, got %T: %v", err, err)
	}
	if gf.UserMessage() != GenerationMessage {
		t.Fatalf("unexpected user message %q", gf.UserMessage())
	}
	if target != nil && !errors.Is(err, target) {
		t.Fatalf("expected %v in chain, got %v", target, err)
	}
}

func TestGenerate_TenRecordsInOrder(t *testing.T) {
	items := make([]map[string]any, 10)
	for i := range items {
		items[i] = sampleItem(i)
	}
	m := &fakeModel{reply: encode(t, items...)}
	g := newTestGenerator(t, m, time.Second)

	records, err := g.Generate(context.Background(), "Cafeterías", "España")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 10 {
		t.Fatalf("expected 10 records, got %d", len(records))
	}
	for i, r := range records {
		want := fmt.Sprintf("Cafetería de especialidad %d", i)
		if r.BusinessType != want {
			t.Fatalf("record %d: expected %q, got %q", i, want, r.BusinessType)
		}
	}

	if m.calls != 1 {
		t.Fatalf("expected exactly one model call, got %d", m.calls)
	}
	if m.lastReq.Temperature != 0.8 {
		t.Fatalf("expected temperature 0.8, got %v", m.lastReq.Temperature)
	}
	if m.lastReq.Schema == nil || m.lastReq.Schema.Items == nil {
		t.Fatal("expected array response schema")
	}
	for _, token := range []string{"'Cafeterías'", "'España'", "10 oportunidades"} {
		if !strings.Contains(m.lastReq.Prompt, token) {
			t.Fatalf("prompt missing %q", token)
		}
	}
}

func TestGenerate_SingleRecordScenario(t *testing.T) {
	g := newTestGenerator(t, &fakeModel{reply: encode(t, sampleItem(0))}, time.Second)

	records, err := g.Generate(context.Background(), "Cafeterías", "España")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.AcceptanceProbability.Rating != models.RatingHigh || r.AcceptanceProbability.Score != 9 {
		t.Fatalf("unexpected acceptance %+v", r.AcceptanceProbability)
	}
	if r.EaseOfCreation != 7 || r.OpportunityForGain != 8 {
		t.Fatalf("unexpected scores %v/%v", r.EaseOfCreation, r.OpportunityForGain)
	}
	if !strings.Contains(r.AppCreationPrompt, "<docs>") {
		t.Fatalf("build prompt must be kept verbatim, got %q", r.AppCreationPrompt)
	}
}

func TestGenerate_Failures(t *testing.T) {
	networkErr := errors.New("dial tcp: connection refused")

	outOfRange := sampleItem(0)
	outOfRange["easeOfCreation"] = 12

	missing := sampleItem(0)
	delete(missing, "managerEmail")

	badRating := sampleItem(0)
	badRating["acceptanceProbability"].(map[string]any)["rating"] = "Quizás"

	blank := sampleItem(0)
	blank["urgentNeed"] = "   "

	tests := []struct {
		name   string
		model  *fakeModel
		target error
	}{
		{"network error", &fakeModel{err: networkErr}, networkErr},
		{"empty array", &fakeModel{reply: "[]"}, ErrEmptyResult},
		{"object instead of array", &fakeModel{reply: `{"sector":"x"}`}, ErrEmptyResult},
		{"wrapped object", &fakeModel{reply: `{"opportunities":` + encode(t, sampleItem(0)) + `}`}, ErrEmptyResult},
		{"fenced wrapped object", &fakeModel{reply: "```json\n{\"opportunities\":" + encode(t, sampleItem(0)) + "}\n```"}, ErrEmptyResult},
		{"prose", &fakeModel{reply: "Lo siento, no puedo ayudar con eso."}, nil},
		{"score out of range", &fakeModel{reply: encode(t, outOfRange)}, ErrMalformedRecord},
		{"missing field", &fakeModel{reply: encode(t, missing)}, ErrMalformedRecord},
		{"unknown rating", &fakeModel{reply: encode(t, badRating)}, ErrMalformedRecord},
		{"blank field", &fakeModel{reply: encode(t, blank)}, ErrMalformedRecord},
		{"second record malformed", &fakeModel{reply: encode(t, sampleItem(0), missing)}, ErrMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, tt.model, time.Second)
			records, err := g.Generate(context.Background(), "Cafeterías", "España")
			if records != nil {
				t.Fatalf("expected no records, got %d", len(records))
			}
			requireFailure(t, err, tt.target)
			if tt.model.calls != 1 {
				t.Fatalf("expected a single attempt, got %d", tt.model.calls)
			}
		})
	}
}

func TestGenerate_BlankInputsSkipModel(t *testing.T) {
	m := &fakeModel{reply: encode(t, sampleItem(0))}
	g := newTestGenerator(t, m, time.Second)

	_, err := g.Generate(context.Background(), "  ", "España")
	requireFailure(t, err, nil)
	if m.calls != 0 {
		t.Fatalf("model must not be called, got %d calls", m.calls)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	g := newTestGenerator(t, &fakeModel{block: true}, 20*time.Millisecond)

	_, err := g.Generate(context.Background(), "Cafeterías", "España")
	requireFailure(t, err, context.DeadlineExceeded)
}

func TestGenerate_Normalization(t *testing.T) {
	item := sampleItem(0)
	item["acceptanceProbability"].(map[string]any)["rating"] = " high "
	item["acceptanceProbability"].(map[string]any)["score"] = "9"
	item["easeOfCreation"] = "7.5"
	item["businessType"] = "<b>Cafetería</b> &amp; tostador"
	item["managerEmail"] = " Ana.Gomez@Cafe.es "

	g := newTestGenerator(t, &fakeModel{reply: encode(t, item)}, time.Second)
	records, err := g.Generate(context.Background(), "Cafeterías", "España")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := records[0]
	if r.AcceptanceProbability.Rating != models.RatingHigh {
		t.Fatalf("expected Alta, got %q", r.AcceptanceProbability.Rating)
	}
	if r.AcceptanceProbability.Score != 9 || r.EaseOfCreation != 7.5 {
		t.Fatalf("expected numeric coercion, got %v and %v", r.AcceptanceProbability.Score, r.EaseOfCreation)
	}
	if r.BusinessType != "Cafetería & tostador" {
		t.Fatalf("expected markup stripped, got %q", r.BusinessType)
	}
	if r.ManagerEmail != "ana.gomez@cafe.es" {
		t.Fatalf("expected lowercased email, got %q", r.ManagerEmail)
	}
}

func TestGenerate_TolerantParsing(t *testing.T) {
	valid := encode(t, sampleItem(0))

	tests := []struct {
		name  string
		reply string
	}{
		{"markdown fence", "```json\n" + valid + "\n```"},
		{"leading prose", "Aquí tienes el resultado:\n" + valid},
		{"trailing comma", strings.TrimSuffix(valid, "]") + ",]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, &fakeModel{reply: tt.reply}, time.Second)
			records, err := g.Generate(context.Background(), "Cafeterías", "España")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}
		})
	}
}

func TestExtractFirstJSONArray(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`[1,2]`, `[1,2]`, true},
		{`text [ {"a":"]"} ] more`, `[ {"a":"]"} ]`, true},
		{`[[1],[2]] tail`, `[[1],[2]]`, true},
		{`{"a":1}`, ``, false},
		{`[1,2`, ``, false},
	}
	for _, tt := range tests {
		got, ok := extractFirstJSONArray(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("extractFirstJSONArray(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
