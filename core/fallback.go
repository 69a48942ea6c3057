package core

import apperrors "github.com/Skryldev/imagebatch/errors"

// DecideFallback returns the format to retry with after encoding to desired
// failed with err. Only WebP degrades, and only when its encoder is
// unavailable; every other failure is final.
func DecideFallback(desired Format, err error) (Format, bool) {
	if desired == FormatWebP && apperrors.IsKind(err, apperrors.KindUnsupportedOutputFormat) {
		return FormatJPEG, true
	}
	return "", false
}
