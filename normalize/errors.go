package normalize

import "github.com/relstream/compiler/compileerr"

func invariantf(format string, args ...interface{}) error {
	return compileerr.New(compileerr.InternalInvariant, format, args...)
}
