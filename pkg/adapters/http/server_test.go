package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/designbridge"
	"github.com/aretw0/designbridge/pkg/adapters/simulated"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/aretw0/designbridge/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, delay time.Duration) (http.Handler, *designbridge.Bridge) {
	t.Helper()
	streams := NewStreamManager(nil)
	metrics := observability.NewMetrics()
	bridge := designbridge.New(
		designbridge.WithExecutor(simulated.New(simulated.WithDelay(delay))),
		designbridge.WithLifecycleHooks(metrics.Hooks(streams.Hooks(domain.LifecycleHooks{}))),
	)
	require.NoError(t, bridge.Start(context.Background()))
	t.Cleanup(func() { bridge.Close() })
	return NewHandler(bridge, WithStreams(streams), WithMetrics(metrics.Handler())), bridge
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetHealthAndInfo(t *testing.T) {
	h, _ := newTestHandler(t, 0)

	w := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","state":"simulated"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, strings.TrimSpace(designbridge.Version), info["version"])
}

func TestOpenAPIDocumentIsValid(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/commands/{kind}"))

	h, _ := newTestHandler(t, 0)
	w := do(t, h, http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestSendCommand_LandingFlow(t *testing.T) {
	h, bridge := newTestHandler(t, 0)

	w := do(t, h, http.MethodPost, "/commands/create_wireframe", `{"description":"Landing","pages":["Home","About"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp domain.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	pageIDs, _ := resp.Data.Strings(domain.KeyPageIDs)
	assert.Len(t, pageIDs, 2)

	w = do(t, h, http.MethodPost, "/commands/ADD_ELEMENT", `{"elementType":"rectangle"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, bridge.SessionContext().ActivePageID, resp.Data["parentId"])

	w = do(t, h, http.MethodGet, "/context", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sc domain.SessionContext
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sc))
	require.Len(t, sc.Wireframes, 1)
	assert.Equal(t, "Landing", sc.Wireframes[0].Name)
}

func TestSendCommand_Errors(t *testing.T) {
	h, _ := newTestHandler(t, 0)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"Unknown Kind", "/commands/DELETE_EVERYTHING", "", http.StatusBadRequest},
		{"Malformed Body", "/commands/ADD_ELEMENT", "{", http.StatusBadRequest},
		{"Wrong Field Type", "/commands/ARRANGE_LAYOUT", `{"spacing":[1,2]}`, http.StatusBadRequest},
		{"Bad Timeout", "/commands/GET_SELECTION?timeout_ms=soon", "", http.StatusBadRequest},
		{"Empty Body", "/commands/GET_SELECTION", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestSendCommand_Timeout(t *testing.T) {
	h, _ := newTestHandler(t, time.Hour)

	w := do(t, h, http.MethodPost, "/commands/GET_SELECTION?timeout_ms=20", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestSendCommand_MutationError(t *testing.T) {
	h := NewHandler(rejectingBridge{})

	w := do(t, h, http.MethodPost, "/commands/MODIFY_ELEMENT", `{"elementId":"1:2"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp domain.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Node not found", resp.Error)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, statusFor(&domain.DispatchError{CommandID: "x", Err: fmt.Errorf("broken pipe")}))
	assert.Equal(t, http.StatusBadGateway, statusFor(fmt.Errorf("wait: %w", domain.ErrHostDisconnected)))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(domain.ErrBridgeClosed))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("boom")))
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestHandler(t, 0)
	do(t, h, http.MethodPost, "/commands/GET_SELECTION", "")

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `designbridge_commands_total{kind="GET_SELECTION",outcome="success"} 1`)
}

func TestSubscribeEvents(t *testing.T) {
	h, _ := newTestHandler(t, 0)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?kinds=add_element", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(prefix string) string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q", prefix)
		return ""
	}
	waitFor("data: connected")

	// Filtered out, then delivered.
	do(t, h, http.MethodPost, "/commands/GET_SELECTION", "")
	do(t, h, http.MethodPost, "/commands/ADD_ELEMENT", `{"elementType":"text"}`)

	line := waitFor("data: {")
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
	assert.Equal(t, domain.KindAddElement, ev.Kind)
	assert.True(t, ev.Success)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t, 0)
	w := do(t, h, http.MethodOptions, "/commands/GET_SELECTION", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

type rejectingBridge struct{}

func (rejectingBridge) Send(_ context.Context, cmd domain.Command) (domain.Response, error) {
	resp := domain.Failed(cmd, "Node not found")
	return resp, &domain.MutationError{Kind: cmd.Kind(), CommandID: cmd.ID, Message: resp.Error}
}

func (rejectingBridge) SessionContext() domain.SessionContext { return domain.SessionContext{} }
func (rejectingBridge) State() domain.State                   { return domain.StateHostConnected }
