/*
Package datastore defines the contracts between the schema store and the
engines that execute statements.

A Factory starts a SessionFactory for one named store. Engines share the
Mappers table, which parses mapper documents into statements:

	<mapper namespace="org.example.content.MavenAssetDAO">
	  <sql id="columns">id, path, attributes</sql>
	  <update id="createSchema">
	    CREATE TABLE IF NOT EXISTS maven_asset (id UUID PRIMARY KEY, path VARCHAR NOT NULL, attributes JSONB)
	  </update>
	  <insert id="create">
	    INSERT INTO maven_asset (<include refid="columns"/>) VALUES (#{asset}, #{path}, #{attributes})
	  </insert>
	  <select id="browse" databaseId="postgresql">
	    SELECT <include refid="columns"/> FROM maven_asset LIMIT #{limit}
	  </select>
	</mapper>

Bind renders #{name} references into engine placeholders, encoding each value
through the codec registry.

Implementations live in the subpackages: pg (PostgreSQL via pgx), ddb
(DynamoDB) and mock (in-memory, for tests).
*/
package datastore
