// Package postgres contains PostgreSQL implementations of the store
// interfaces, built on database/sql with the pgx stdlib driver. Dynamic
// listing queries are assembled with squirrel; everything else is plain SQL.
package postgres
