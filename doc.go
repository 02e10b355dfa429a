/*
Package schemastore registers data access types against a storage engine.

An access type is described by an access.Descriptor. Plain access types own a
mapper document at their resource path. Concrete access types that extend a
schema template get their mapper assembled from the template, with the
template placeholder replaced by the prefix taken from the concrete name:

	MavenAssetDAO extends AssetDAO  =>  prefix "maven", ${format} -> maven

A Store owns one engine (see package datastore and its pg, ddb and mock
adapters), the codec registry of that engine and the ledger of registered
access types. Registration is idempotent and runs the createSchema statement
of each access type once per start:

	store := schemastore.New("content", pg.Open,
	    schemastore.WithAttributes(attrs),
	    schemastore.WithSources(os.DirFS("mappers")),
	)
	if err := store.Start(ctx); err != nil {
	    return err
	}
	defer store.Stop(ctx)

	if err := store.Register(ctx, MavenAssetDAO); err != nil {
	    return err
	}

The store called "config" holds configuration data and additionally encrypts
passwords and sensitive attributes. Every other store is a content store.
Lifecycle events are emitted as capitan signals.
*/
package schemastore
