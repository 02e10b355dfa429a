/*
Package errors provides semantic error types for the schemastore library.

The package defines the failure classes of schema registration and assembly
with specific types that can be checked using the standard errors.Is() function
or the provided helper functions.

Common Errors:

	var (
	    ErrMissingResource         = errors.New("missing definition resource")
	    ErrInvalidPrefix           = errors.New("invalid prefix")
	    ErrTypeResolution          = errors.New("type resolution failed")
	    ErrAssemblyParse           = errors.New("definition parse failed")
	    ErrUnsupportedBackupTarget = errors.New("backup not supported")
	)

Usage:

	if err := store.Register(ctx, MavenAssetDAO); err != nil {
	    if errors.IsMissingResource(err) {
	        // the template or simple definition was not packaged
	    }
	    return err
	}

	// Create typed errors
	err := errors.NewInvalidPrefixError("BarDAO", "BarDAO", true)
	err := errors.NewTypeResolutionError("org.example.MavenComponentDAO", "org.example.ComponentDAO", cause)

Nothing in the registration path is retried: these errors point at the
definitions or the access declarations, which must be fixed at the source.
*/
package errors
