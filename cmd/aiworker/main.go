// Command aiworker is a reference inference worker. It connects to the
// hub as role=worker, waits for a bind, and answers landmark frames with
// ai_result messages.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"gitlab.com/signcall-2025.net/internal/adapter/logging"
	"gitlab.com/signcall-2025.net/internal/adapter/model"
	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/services/landmark"
	"gitlab.com/signcall-2025.net/internal/domain"
	"gitlab.com/signcall-2025.net/internal/ws/defs"
)

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 10 * time.Second
)

type worker struct {
	wsURL      string
	token      string
	room       string
	labels     []string
	classifier *model.Classifier
	logger     primary.Logger
}

func main() {
	_ = godotenv.Load()
	logger := logging.NewZapLogger()

	w := &worker{
		wsURL:  getEnv("WS_URL", "ws://localhost:8001/ai"),
		token:  os.Getenv("AI_TOKEN"),
		room:   os.Getenv("ROOM"),
		logger: logger,
	}

	if raw := os.Getenv("LABELS"); raw != "" {
		w.labels = strings.Split(raw, ",")
	}

	modelPath := getEnv("MODEL_PATH", "models/multi_hand_gesture_classifier.json")
	classifier, err := model.Load(modelPath, logger)
	if err != nil {
		logger.Error("Failed to load model", "path", modelPath, "error", err)
		os.Exit(1)
	}
	w.classifier = classifier

	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	w.runForever(ctx)
	logger.Info("Worker stopped")
}

// runForever reconnects with doubling backoff until ctx is cancelled. A
// successful dial resets the backoff so a disconnect after a long session
// retries quickly again.
func (w *worker) runForever(ctx context.Context) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		connected, err := w.runOnce(ctx)
		if connected {
			backoff = initialBackoff
		}
		if err != nil {
			w.logger.Warn("Connection lost", "error", err, "retryIn", backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff = nextBackoff(backoff)
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		next = maxBackoff
	}
	return next
}

func (w *worker) dialURL() (string, error) {
	u, err := url.Parse(w.wsURL)
	if err != nil {
		return "", fmt.Errorf("invalid WS_URL: %w", err)
	}
	q := u.Query()
	q.Set("role", string(domain.RoleWorker))
	q.Set("token", w.token)
	if w.room != "" {
		q.Set("room", w.room)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// runOnce reports whether the dial succeeded so the caller can reset its
// backoff; the error is whatever ended the session.
func (w *worker) runOnce(ctx context.Context) (bool, error) {
	target, err := w.dialURL()
	if err != nil {
		return false, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, target, nil)
	if err != nil {
		return false, fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	w.logger.Info("Connected to hub", "url", w.wsURL, "room", w.room)

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	boundRoom := w.room
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}

		var env defs.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// Garbled traffic passes through the hub; not for us.
			continue
		}

		switch env.Type {
		case defs.TypeBind:
			var bind defs.BindData
			if err := json.Unmarshal(raw, &bind); err != nil {
				continue
			}
			boundRoom = bind.RoomID
			w.logger.Info("Bound to room", "room", boundRoom)

		case defs.TypeHandLandmarks:
			w.handleLandmarks(conn, raw, boundRoom)
		}
	}
}

func (w *worker) handleLandmarks(conn *websocket.Conn, raw []byte, room string) {
	var data defs.HandLandmarksData
	if err := json.Unmarshal(raw, &data); err != nil {
		w.logger.Debug("Skipping malformed landmarks", "error", err)
		return
	}

	hands := defs.Frames(data.Landmarks)
	if len(hands) == 0 {
		return
	}

	features := landmark.AnchorNormalize(landmark.SelectPrimary(hands))
	tensor := domain.Tensor{Data: [][]float32{features}}

	scores, err := w.classifier.Classify(context.Background(), tensor)
	if err != nil {
		w.logger.Error("Inference failed", "error", err)
		return
	}
	if len(scores) == 0 {
		return
	}

	bestIdx := 0
	for i, v := range scores {
		if v > scores[bestIdx] {
			bestIdx = i
		}
	}

	result := defs.AiResult{
		Type:    defs.TypeAiResult,
		Text:    w.label(bestIdx),
		Score:   float64(scores[bestIdx]),
		FrameID: data.FrameID,
		RoomID:  room,
	}
	if err := conn.WriteJSON(result); err != nil {
		w.logger.Error("Failed to send result", "error", err)
	}
}

func (w *worker) label(idx int) string {
	if idx >= 0 && idx < len(w.labels) {
		return w.labels[idx]
	}
	return fmt.Sprintf("수어_%d", idx)
}

// getEnv gets an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
