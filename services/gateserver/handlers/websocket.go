package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/fitgate/pkg/extensions"
	"github.com/AleutianAI/fitgate/pkg/version"
	"github.com/AleutianAI/fitgate/services/engine/fitness"
	"github.com/AleutianAI/fitgate/services/engine/gate"
	"github.com/AleutianAI/fitgate/services/engine/scenario"
	"github.com/AleutianAI/fitgate/services/telemetry"
)

// streamMessage is the envelope for every frame the evaluation stream
// sends. Type selects which of the optional fields is populated:
//
//	"run_started"  RunID
//	"verdict"      RunID, Check, Verdict
//	"check_error"  RunID, Check, Error
//	"decision"     RunID, Decision
//	"error"        Error (scenario rejected, no run started)
type streamMessage struct {
	Type     string           `json:"type"`
	RunID    string           `json:"run_id,omitempty"`
	Check    string           `json:"check,omitempty"`
	Error    string           `json:"error,omitempty"`
	Verdict  *fitness.Verdict `json:"verdict,omitempty"`
	Decision *gate.Decision   `json:"decision,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	// 64KB buffers; scenario documents are capped at 1MB and gorilla
	// handles messages larger than the buffer.
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
}

func sendJSON(ws *websocket.Conn, v interface{}) error {
	err := ws.WriteJSON(v)
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}

// HandleEvaluateStream runs release gates over a WebSocket, streaming
// each verdict as its check completes instead of holding the response
// until the whole gate finishes.
//
// Each text message from the client is a scenario document (YAML or
// JSON). The server answers with a run_started frame, then one verdict
// or check_error frame per check in completion order, then a final
// decision frame. A rejected scenario produces a single error frame and
// the connection stays open for the next document.
func HandleEvaluateStream(auditor extensions.AuditLogger, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()
		ws.SetReadLimit(scenario.MaxScenarioBytes + 1)
		slog.Info("Evaluation stream client connected", "client_ip", c.ClientIP())

		if metrics != nil {
			metrics.StreamSessionsActive.Add(c.Request.Context(), 1)
			defer metrics.StreamSessionsActive.Add(c.Request.Context(), -1)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				slog.Info("Evaluation stream client disconnected", "error", err.Error())
				break
			}

			checks, scenarioID, loadErr := loadStreamScenario(data)
			if loadErr != nil {
				countStreamMessage(c, metrics, "error")
				if err := sendJSON(ws, streamMessage{Type: "error", Error: loadErr.Error()}); err != nil {
					return
				}
				continue
			}

			if !streamGateRun(c, ws, auditor, metrics, scenarioID, checks) {
				return
			}
		}
	}
}

// loadStreamScenario parses one inbound document into runnable checks.
func loadStreamScenario(data []byte) ([]fitness.FitnessFunction, string, error) {
	scn, err := scenario.Load(data)
	if err != nil {
		return nil, "", err
	}
	if err := scn.SupportedBy(version.Version); err != nil {
		return nil, "", err
	}
	checks, err := scn.Build()
	if err != nil {
		return nil, "", err
	}
	return checks, scn.Metadata.ID, nil
}

// streamOutcome carries one finished check from its worker to the
// connection writer. Exactly one of verdict or err is set.
type streamOutcome struct {
	index   int
	name    string
	verdict fitness.Verdict
	err     error
}

// streamGateRun evaluates the checks, streaming frames as they finish,
// and reports whether the connection is still writable.
//
// The gorilla connection forbids concurrent writes, so workers hand
// their outcomes to this goroutine over a channel and only it touches
// the socket. If a write fails the loop stops sending but keeps
// draining so no worker is left blocked.
func streamGateRun(c *gin.Context, ws *websocket.Conn, auditor extensions.AuditLogger,
	metrics *telemetry.Metrics, scenarioID string, checks []fitness.FitnessFunction) bool {

	ctx := c.Request.Context()
	runID := gate.NewRunID()
	start := time.Now()

	countStreamMessage(c, metrics, "run_started")
	if err := sendJSON(ws, streamMessage{Type: "run_started", RunID: runID}); err != nil {
		return false
	}

	results := make(chan streamOutcome)
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	go func() {
		for i, check := range checks {
			i, check := i, check // Capture loop variables
			eg.Go(func() error {
				verdict, err := check.Evaluate(gCtx)
				results <- streamOutcome{index: i, name: check.Name(), verdict: verdict, err: err}
				return nil
			})
		}
		// Workers never return errors; outcomes carry them per check.
		_ = eg.Wait()
		close(results)
	}()

	outcomes := make([]streamOutcome, len(checks))
	sendFailed := false
	for out := range results {
		outcomes[out.index] = out

		if sendFailed {
			continue
		}
		msg := streamMessage{Type: "verdict", RunID: runID, Check: out.name, Verdict: &out.verdict}
		if out.err != nil {
			msg = streamMessage{Type: "check_error", RunID: runID, Check: out.name, Error: out.err.Error()}
		}
		countStreamMessage(c, metrics, msg.Type)
		if err := sendJSON(ws, msg); err != nil {
			sendFailed = true
		}
	}

	decision := &gate.Decision{RunID: runID, StartedAt: start}
	for i := range outcomes {
		out := outcomes[i]
		if out.err != nil {
			decision.Errors = append(decision.Errors, gate.CheckError{
				Name:    out.name,
				Err:     out.err,
				Message: out.err.Error(),
			})
			continue
		}
		decision.Verdicts = append(decision.Verdicts, out.verdict)
	}
	decision.Approved = len(decision.Errors) == 0 && gate.Aggregate(decision.Verdicts)
	decision.Duration = time.Since(start)
	decision.DurationMs = decision.Duration.Milliseconds()

	outcome := "blocked"
	if decision.Approved {
		outcome = "approved"
	}
	countEvaluation(c, metrics, outcome)

	event := auditForDecision(scenarioID, decision)
	event.Metadata["transport"] = "websocket"
	recordAudit(c, auditor, metrics, event)

	slog.Info("Streamed evaluation completed",
		"run_id", runID,
		"scenario", scenarioID,
		"approved", decision.Approved,
		"failed", len(decision.Failed()),
		"errored", len(decision.Errors))

	if sendFailed {
		return false
	}
	countStreamMessage(c, metrics, "decision")
	return sendJSON(ws, streamMessage{Type: "decision", RunID: runID, Decision: decision}) == nil
}

func countStreamMessage(c *gin.Context, m *telemetry.Metrics, msgType string) {
	if m == nil {
		return
	}
	m.StreamMessagesTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(attribute.String("type", msgType)))
}
