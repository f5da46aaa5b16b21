package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "secureprint_notifications_total",
		Help: "Detached notifications by dispatch path and result.",
	},
	[]string{"path", "result"},
)
