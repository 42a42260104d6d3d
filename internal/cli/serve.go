package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/hub"
	"github.com/paperbase/paperbase/internal/monitor"
	"github.com/paperbase/paperbase/internal/notif"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the notification server",
		Long: "Serve WebSocket notification streams at /ws/{group} and accept task " +
			"updates at /internal/task-status. Events flow worker -> relay -> " +
			"connected clients.",
		Run: runServe,
	}

	cmd.Flags().String("listen", ":8642", "Listen address")
	cmd.Flags().String("relay", "", "Relay URL (default: $PAPERBASE_RELAY or memory://)")

	RootCmd.AddCommand(cmd)
}

func getRelayURL(cmd *cobra.Command) string {
	if v, _ := cmd.Flags().GetString("relay"); v != "" {
		return v
	}
	if env := os.Getenv("PAPERBASE_RELAY"); env != "" {
		return env
	}
	return "memory://"
}

func runServe(cmd *cobra.Command, args []string) {
	listen, _ := cmd.Flags().GetString("listen")
	relayURL := getRelayURL(cmd)
	logger := cliLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relay, err := notif.Open(relayURL, "", logger)
	if err != nil {
		exitErr("open relay", err)
	}

	// Task records live next to the relay: shared in Redis when the
	// relay is shared, in process memory otherwise.
	var mstore monitor.Store
	if strings.HasPrefix(relayURL, "redis") {
		rs, err := monitor.NewRedisStore(relayURL)
		if err != nil {
			exitErr("open task store", err)
		}
		defer rs.Close()
		mstore = rs
	} else {
		mstore = monitor.NewMemoryStore()
	}

	mon := monitor.NewMonitor("", mstore, logger)
	mon.SetCallback(monitor.RelayCallback(relay, logger))

	h := hub.NewHub(logger)
	fwd := hub.NewForwarder(relay, h, logger)
	fwdDone := make(chan error, 1)
	go func() { fwdDone <- fwd.Run(ctx) }()

	router := hub.NewHandler(h, logger).Router()
	router.HandleFunc("/internal/task-status", handleTaskUpdate(mon, logger)).Methods(http.MethodPost)
	router.HandleFunc("/internal/task-status/{task}/{doc}", handleTaskStatus(mon)).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:              listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srvDone := make(chan error, 1)
	go func() { srvDone <- srv.ListenAndServe() }()
	logger.Info().Str("addr", listen).Str("relay", relayURL).Msg("notification server up")

	select {
	case err := <-srvDone:
		exitErr("serve", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		// WebSocket connections survive Shutdown; force them.
		srv.Close()
	}
	relay.Close()

	if err := <-fwdDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("forwarder stopped with error")
	}
}

func handleTaskUpdate(mon *monitor.Monitor, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var up monitor.Update
		if err := json.NewDecoder(r.Body).Decode(&up); err != nil {
			http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
			return
		}
		if err := mon.Observe(r.Context(), up); err != nil {
			logger.Warn().Err(err).Str("task", up.TaskName).Msg("task update rejected")
			http.Error(w, `{"error":"unprocessable"}`, http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"ok":true}`))
	}
}

func handleTaskStatus(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		rec, ok, err := mon.Status(r.Context(), vars["task"], vars["doc"], page)
		if err != nil {
			http.Error(w, `{"error":"status lookup failed"}`, http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rec)
	}
}
