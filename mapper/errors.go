/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mapper

import "errors"

var errNoRoot = errors.New("document has no root element")
