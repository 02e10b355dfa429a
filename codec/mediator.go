/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

// Mediator decides which discovered codecs a store accepts: content stores
// take content codecs, the configuration store takes everything else.
type Mediator struct {
	ContentStore bool
}

// Admit reports whether c belongs in the store.
func (m Mediator) Admit(c Codec) bool {
	_, content := c.(ContentCodec)
	return m.ContentStore == content
}
