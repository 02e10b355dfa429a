/*
Package config loads store configuration with koanf.

Values are layered: built-in defaults, then a YAML or TOML file, then
environment variables prefixed with SCHEMASTORE_ where a double underscore
separates levels. A .env file in the working directory is read first.

	logging:
	  verbosity: 2
	mappers: ./mappers
	manifest: ./descriptors.yaml
	security:
	  passphrase: changeit
	  salt: 7d3f0c
	  sensitive: [password, secret, token]
	stores:
	  config:
	    engine: postgresql
	    attributes:
	      jdbcUrl: jdbc:postgresql://localhost:5432/config
	      maximumPoolSize: 10
	  content:
	    engine: dynamodb
	    attributes:
	      region: eu-west-1
	      tablePrefix: prod_

Here SCHEMASTORE_STORES__CONTENT__ATTRIBUTES__TABLEPREFIX=test_ would
override the table prefix.
*/
package config
