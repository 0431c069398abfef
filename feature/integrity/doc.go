// Package integrity provides system health checks for the upload manager.
//
// # Checks Provided
//
//   - Storage: Checks that the media bucket exists (optionally creating it).
//   - Schema: Validates that the users and uploaded_files tables match the GORM models.
//   - Reconcile: Compares uploaded file records with the objects under each user's
//     upload prefix, reporting records whose object is gone and objects no record
//     points at. Purging both kinds requires explicit confirmation.
//
// # HTTP Endpoints
//
// All routes require the X-API-Key header when server.apikey is configured.
//
//   - GET /integrity : Runs all checks (reconcile as a dry run).
//   - GET /integrity/storage : Runs the bucket check (supports ?fix=true).
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/reconcile : Runs the reconcile (supports ?key=, ?purge=true&confirm=true).
package integrity
