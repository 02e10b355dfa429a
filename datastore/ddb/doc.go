/*
Package ddb runs mapper statements on Amazon DynamoDB.

DynamoDB has no SQL, so its mappers declare items instead. Each line of a
write or key lookup is NAME = TEMPLATE, where {Field} macros expand to
parameter values:

	<mapper namespace="org.example.content.MavenAssetDAO">
	  <createTable id="createSchema" table="maven_asset">
	    GSI1 = GSI1PK GSI1SK
	  </createTable>
	  <put id="create" table="maven_asset">
	    PK = ASSET#{id}
	    SK = PATH#{path}
	    GSI1PK = KIND#{kind}
	  </put>
	  <get id="read" table="maven_asset">
	    PK = ASSET#{id}
	    SK = PATH#{path}
	  </get>
	  <update id="touch" table="maven_asset" set="lastUpdated" condition="attribute_exists(PK)">
	    PK = ASSET#{id}
	    SK = PATH#{path}
	  </update>
	  <select id="byKind" table="maven_asset" index="GSI1" limit="100">
	    GSI1PK = #{kind}
	  </select>
	</mapper>

createTable runs immediately and waits for the table to become active.
put, update and remove statements are buffered by the session and written
in one TransactWriteItems call on commit. select statements are key
condition expressions whose #{name} references bind as :p0, :p1...; pages
are followed until the limit is reached, retrying throttled requests.

Store attributes:

	region        AWS region
	accessKey     static credentials, otherwise the default chain is used
	secretKey
	endpoint      custom endpoint, e.g. http://localhost:8000 for DynamoDB Local
	tablePrefix   prepended to every table name
	maxRetries    retries for throttled queries (default 3)
	retryBackoff  base backoff in milliseconds (default 100)
*/
package ddb
