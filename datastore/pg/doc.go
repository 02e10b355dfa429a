/*
Package pg runs mapper statements on PostgreSQL through a pgx connection pool.

Store attributes configure the pool:

	jdbcUrl          postgresql://host:5432/db (a leading jdbc: is stripped)
	username         overrides the user in the URL
	password         overrides the password in the URL
	schema           becomes the search_path; blank values are ignored
	maximumPoolSize  upper bound of pooled connections
	minimumIdle      connections kept open while idle
	advanced         extra key=value or key:value lines, never overriding the keys above

Every session runs inside one transaction that is started on first use.
*/
package pg
