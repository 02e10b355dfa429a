/*
Package access describes access types: the per-entity-family contracts whose
statement definitions the store assembles and registers.

A Descriptor is declared once, statically, with everything the store would
otherwise discover by introspection:

	var ComponentDAO = access.DefineTemplate("org.example.content.ComponentDAO", "format")

	var AssetDAO = access.DefineTemplate("org.example.content.AssetDAO", "format",
	    access.Expects(ComponentDAO),
	    access.WithMethods(
	        access.NewMethod("browse", []reflect.Type{reflect.TypeFor[AssetQuery]()}, reflect.TypeFor[[]Asset]()),
	    ))

	var MavenAssetDAO = access.Define("org.example.content.MavenAssetDAO", access.Extends(AssetDAO))

Templates carry a placeholder; concrete descriptors extend exactly one template
directly and must be named <Prefix><TemplateSimpleName>.

Descriptors can also be loaded from a YAML manifest:

	descriptors:
	  - name: org.example.content.AssetDAO
	    placeholder: format
	    expects: [org.example.content.ComponentDAO]
	  - name: org.example.content.MavenAssetDAO
	    extends: [org.example.content.AssetDAO]
*/
package access
