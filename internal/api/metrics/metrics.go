// Package metrics defines and registers all custom Prometheus metrics for the
// report portal API. It is the single source of truth for metric names,
// labels, and help strings.
//
// The vectors are registered with the default registry on package init via
// promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokensRevokedTotal counts refresh tokens revoked through logout.
var TokensRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_revoked_total",
		Help:      "Total number of refresh tokens revoked.",
	},
)

// ── Registry metrics ──────────────────────────────────────────────────────────

// ClientsProvisionedTotal counts Clients created together with their login.
var ClientsProvisionedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_provisioned_total",
		Help:      "Total number of clients provisioned with a client-role account.",
	},
)

// ReportsCreatedTotal counts newly created Reports.
// Label:
//   - type: "Dashboard" or "Report"
var ReportsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_created_total",
		Help:      "Total number of reports created, by type.",
	},
	[]string{"type"},
)

// VisibilityDeniedTotal counts mutations refused by the ownership check.
// Label:
//   - resource: "client", "report" or "user"
var VisibilityDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "visibility_denied_total",
		Help:      "Total number of requests refused with 403, by resource.",
	},
	[]string{"resource"},
)
