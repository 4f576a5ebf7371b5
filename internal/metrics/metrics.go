package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OTPIssued counts verification codes stored, labelled by purpose.
	OTPIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_backend_otp_issued_total",
		Help: "One-time codes issued.",
	}, []string{"purpose"})

	// CouponsExpired counts active→expired transitions, labelled by trigger.
	CouponsExpired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_backend_coupons_expired_total",
		Help: "Coupons flagged as expired.",
	}, []string{"trigger"})

	// CouponsPurged counts coupons permanently removed by cleanup.
	CouponsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coupon_backend_coupons_purged_total",
		Help: "Expired coupons purged after the retention window.",
	})

	// AssetDeleteFailures counts best-effort image deletions that failed.
	AssetDeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coupon_backend_asset_delete_failures_total",
		Help: "Image asset deletions that failed and were skipped.",
	})
)

// Handler returns an http.Handler for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
