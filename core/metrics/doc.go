// Package metrics exposes Prometheus collectors for the upload manager.
//
// Collectors live on a private registry so tests can build as many instances as they
// need. The storage package reports every provider attempt, and the HTTP middleware
// counts requests by status.
//
// # Usage
//
//	m := metrics.New()
//	app.Use(m.Middleware())
//	app.Get("/metrics", m.Handler())
package metrics
