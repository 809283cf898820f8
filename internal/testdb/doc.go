// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database. Tests using it carry the "integration" build tag and
// read the connection string from TASKS_TEST_DB_URL or DATABASE_URL.
//
// Each test runs inside a transaction that is rolled back afterwards:
//
//	db := testdb.GetTestDBWithT(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	    tasks := postgres.NewPostgresTaskStore(tx, nil)
//	    ...
//	})
package testdb
