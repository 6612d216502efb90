package notify

import "github.com/prometheus/client_golang/prometheus"

var notificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "showroom_notifications_total",
		Help: "Notifications delivered, by kind, sink and result.",
	},
	[]string{"kind", "sink", "result"},
)

func init() {
	prometheus.MustRegister(notificationsTotal)
}
