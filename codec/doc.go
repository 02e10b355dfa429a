/*
Package codec binds codecs to the Go types that statements bind and read.

A Registry accepts codecs in three forms. Bound codecs handle one explicit
type, unbound codecs handle the types they target, and detached codecs handle
no type at all and are only used when a statement names them:

	#{secret,codec=EncryptedStringCodec}

Every registration prepares the codec first. Cipher-aware codecs receive the
store cipher. Sensitive-aware codecs receive the password helper and the
sensitive filter, but only if a filter is active at that moment. A codec
registered before SetSensitiveFilter keeps writing plain JSON.

RegisterCommon installs the built-in codecs in their fixed order, and
Mediator filters codecs discovered at runtime by content or configuration use.
*/
package codec
