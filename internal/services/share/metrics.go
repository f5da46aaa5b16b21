package share

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	linksIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "secureprint_links_issued_total",
		Help: "Number of print links issued.",
	})
	otpValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "secureprint_otp_validations_total",
		Help: "OTP validation attempts by result.",
	}, []string{"result"})
	blobFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "secureprint_blob_fetches_total",
		Help: "Gated blob fetches by result.",
	}, []string{"result"})
)
