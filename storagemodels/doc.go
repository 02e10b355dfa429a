/*
Package storagemodels defines the data structures shared by the store and its engines.

Key Types:

Source:
A mapper document handed to an engine, either loaded from a resource path or
assembled from a schema template:

	src := storagemodels.Source{
	    Namespace: "org.example.content.MavenAssetDAO",
	    Location:  "/org/example/content/AssetDAO.xml${format=maven}",
	    Body:      body,
	}

Statement:
One parsed statement (select, insert, update, delete, createTable, put, get
or remove) with its fragments expanded. Statement text references parameters
as #{name}, optionally naming a codec with #{name,codec=EncryptedStringCodec}.

ExecRecord:
What an engine actually ran, used by the in-memory engine and its backups.
*/
package storagemodels
