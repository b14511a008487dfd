// Package database provides the storage connections used by docstore.
//
// The repository layer talks to the document store through two small
// interfaces, DocumentDatabase and DocumentCollection. MongoDB implements
// them over the official driver; tests use the in-memory implementation in
// internal/testutil.
//
// Connecting:
//
//	db, err := database.NewMongo(ctx, cfg.Mongo)
//	if err != nil {
//	    return err
//	}
//	defer db.Close(ctx)
//
//	users := db.Database("").Collection("Users")
//
// Every adapter call records Prometheus metrics labelled by collection and
// operation (see internal/pkg/metrics). Commands slower than
// metrics.SlowOperationThreshold are logged at Warn.
//
// Redis is used by the HTTP rate limiter only and is optional.
package database
