package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/medichat-ai/insights-engine/internal/insight"
	"github.com/medichat-ai/insights-engine/internal/lexicon"
	"github.com/medichat-ai/insights-engine/internal/stats"
)

func request(kind insight.Kind) insight.NarrativeRequest {
	s := stats.Empty()
	s.TotalCount = 4
	s.CategoryCounts = map[lexicon.Category]int{lexicon.Anxious: 3, lexicon.Happy: 1}
	s.DominantCategory = lexicon.Anxious
	return insight.NarrativeRequest{ID: "req-1", Kind: kind, Statistics: s}
}

const insightsReply = `{"insights":[{"type":"positive","title":"Steady week","description":"d","recommendation":"r","confidence":80}]}`

// #region schema

func TestGenerateSchema_Strict(t *testing.T) {
	schema := GenerateSchema[insight.StrategiesPayload]()
	if schema["additionalProperties"] != false {
		t.Errorf("top-level additionalProperties: %v", schema["additionalProperties"])
	}

	props := schema["properties"].(map[string]any)
	items := props["strategies"].(map[string]any)["items"].(map[string]any)
	if items["additionalProperties"] != false {
		t.Error("nested object allows additional properties")
	}

	var required []string
	switch r := items["required"].(type) {
	case []string:
		required = r
	case []any:
		for _, v := range r {
			required = append(required, v.(string))
		}
	}
	sort.Strings(required)
	want := []string{"category", "description", "effectiveness", "id", "personalizedReason", "title"}
	if strings.Join(required, ",") != strings.Join(want, ",") {
		t.Errorf("required: got %v, want %v", required, want)
	}

	category := items["properties"].(map[string]any)["category"].(map[string]any)
	if enum, ok := category["enum"].([]any); !ok || len(enum) != 5 {
		t.Errorf("category enum: %v", category["enum"])
	}
}

// #endregion schema

// #region openai

func TestNewOpenAINarrator_Validates(t *testing.T) {
	if _, err := NewOpenAINarrator(OpenAIConfig{Model: "gpt-4o-mini"}); err == nil {
		t.Error("expected error for empty api key")
	}
	if _, err := NewOpenAINarrator(OpenAIConfig{APIKey: "k"}); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestOpenAINarrator_Narrate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/responses") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)

		text, _ := json.Marshal(insightsReply)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id":"resp_1","object":"response","created_at":1700000000,"model":"gpt-4o-mini","status":"completed",
			"output":[{"type":"message","id":"msg_1","role":"assistant","status":"completed",
				"content":[{"type":"output_text","text":`+string(text)+`,"annotations":[]}]}]
		}`)
	}))
	defer srv.Close()

	n, err := NewOpenAINarrator(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := n.Narrate(context.Background(), request(insight.KindInsights))
	if err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if out != insightsReply {
		t.Errorf("output: got %s", out)
	}

	text, _ := gotBody["text"].(map[string]any)
	format, _ := text["format"].(map[string]any)
	if format["type"] != "json_schema" || format["strict"] != true || format["name"] != "MentalHealthInsights" {
		t.Errorf("format: %v", format)
	}
	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("model: %v", gotBody["model"])
	}
}

func TestOpenAINarrator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
		}, nil},
		{"empty output", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"id":"resp_2","object":"response","status":"completed","output":[]}`)
		}, ErrEmptyOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			n, err := NewOpenAINarrator(OpenAIConfig{APIKey: "k", Model: "m", BaseURL: srv.URL + "/"})
			if err != nil {
				t.Fatal(err)
			}
			_, err = n.Narrate(context.Background(), request(insight.KindStrategies))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenAINarrator_UnknownKind(t *testing.T) {
	n, err := NewOpenAINarrator(OpenAIConfig{APIKey: "k", Model: "m", BaseURL: "http://127.0.0.1:1/"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := n.Narrate(context.Background(), request("poem")); err == nil {
		t.Error("expected error for unknown kind")
	}
}

// #endregion openai

// #region grpc

type mockNarratorService struct {
	resp *structpb.Struct
	err  error
	last *structpb.Struct
}

func (m *mockNarratorService) Generate(_ context.Context, in *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	m.last = in
	return m.resp, m.err
}

func TestGRPCNarrator_WithService(t *testing.T) {
	resp, err := structpb.NewStruct(map[string]any{
		"insights": []any{map[string]any{
			"type": "positive", "title": "Steady week", "description": "d", "recommendation": "r", "confidence": 80,
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	mock := &mockNarratorService{resp: resp}
	out, err := NewGRPCNarratorWithService(mock).Narrate(context.Background(), request(insight.KindInsights))
	if err != nil {
		t.Fatalf("narrate: %v", err)
	}

	var payload insight.InsightsPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("reply not decodable: %v (%s)", err, out)
	}
	if len(payload.Insights) != 1 || payload.Insights[0].Confidence != 80 {
		t.Errorf("payload: %+v", payload)
	}
	if mock.last.GetFields()["kind"].GetStringValue() != "insights" {
		t.Errorf("request kind not forwarded: %v", mock.last)
	}
}

func TestGRPCNarrator_Errors(t *testing.T) {
	_, err := NewGRPCNarratorWithService(&mockNarratorService{err: errors.New("unavailable")}).
		Narrate(context.Background(), request(insight.KindInsights))
	if err == nil {
		t.Error("expected rpc error")
	}

	_, err = NewGRPCNarratorWithService(&mockNarratorService{resp: &structpb.Struct{}}).
		Narrate(context.Background(), request(insight.KindInsights))
	if !errors.Is(err, ErrEmptyOutput) {
		t.Errorf("got %v, want ErrEmptyOutput", err)
	}
}

type echoServer struct{}

func (echoServer) Generate(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	kind := in.GetFields()["kind"].GetStringValue()
	return structpb.NewStruct(map[string]any{
		"strategies": []any{map[string]any{
			"id": "s-" + kind, "title": "Walk", "description": "d", "category": "behavioral",
			"effectiveness": 80, "personalizedReason": "r",
		}},
	})
}

func TestGRPCNarrator_Bufconn(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterNarratorServer(s, echoServer{})
	go s.Serve(lis)
	defer s.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	out, err := NewGRPCNarratorWithService(NewNarratorServiceClient(conn)).
		Narrate(context.Background(), request(insight.KindStrategies))
	if err != nil {
		t.Fatalf("narrate: %v", err)
	}
	var payload insight.StrategiesPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Strategies) != 1 || payload.Strategies[0].ID != "s-strategies" {
		t.Errorf("payload: %+v", payload)
	}
}

func TestNewGRPCNarrator(t *testing.T) {
	n, err := NewGRPCNarrator("localhost:0")
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

// #endregion grpc

// #region limited

type countingNarrator struct{ calls int }

func (c *countingNarrator) Narrate(context.Context, insight.NarrativeRequest) (string, error) {
	c.calls++
	return insightsReply, nil
}

func TestLimited_DeniesOverBurst(t *testing.T) {
	inner := &countingNarrator{}
	l := NewLimited(inner, 0.001, 2)

	for i := 0; i < 2; i++ {
		if _, err := l.Narrate(context.Background(), request(insight.KindInsights)); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if _, err := l.Narrate(context.Background(), request(insight.KindInsights)); !errors.Is(err, ErrRateLimited) {
		t.Errorf("got %v, want ErrRateLimited", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls: got %d, want 2", inner.calls)
	}
}

func TestLimited_FallsBackInGenerator(t *testing.T) {
	l := NewLimited(&countingNarrator{}, 0.001, 0)
	g := insight.NewGenerator(l, insight.DefaultConfig())
	s := request(insight.KindInsights).Statistics
	got := g.Insights(context.Background(), s, nil)
	if len(got) == 0 || got[0].Title == "Steady week" {
		t.Errorf("expected fallback insights, got %+v", got)
	}
}

// #endregion limited
