/*
Package registry holds the store-owned lookup tables used while registering
access types.

Catalog:
Indexes access descriptors by fully-qualified name and by template family, so
that a template expecting a sibling template can find the concrete sibling for
the same prefix without loading anything dynamically:

	catalog.Add(MavenComponentDAO)
	catalog.Bind("org.example.ComponentDAO", "maven", MavenComponentDAO)

	d, ok := catalog.Family("org.example.ComponentDAO", "maven")

Aliases:
Maps simple, package-less names to the value types used by definitions:

	aliases.Register(reflect.TypeFor[[]*Asset]()) // registers "asset"

Both tables are safe for concurrent use.
*/
package registry
