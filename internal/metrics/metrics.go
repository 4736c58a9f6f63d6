package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bedbot_commands_total",
		Help: "Commands handled, by command name",
	}, []string{"command"})

	SavesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bedbot_document_saves_total",
		Help: "Document save attempts, by document and outcome",
	}, []string{"document", "status"})

	RemoteStoreErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bedbot_remote_store_errors_total",
		Help: "Failed requests against the remote JSON store",
	})

	AfkNoticesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bedbot_afk_notices_total",
		Help: "AFK notices sent in reply to mentions of away users",
	})

	RatingLookupErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bedbot_rating_lookup_errors_total",
		Help: "Failed chess-site rating lookups, by provider",
	}, []string{"provider"})
)

// MustRegister registers every bot metric on the given registerer
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		CommandsTotal,
		SavesTotal,
		RemoteStoreErrors,
		AfkNoticesTotal,
		RatingLookupErrors,
	)
}

// IncSave records the outcome of one document save
func IncSave(document string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SavesTotal.WithLabelValues(document, status).Inc()
}
