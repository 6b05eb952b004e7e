package domain

import "errors"

// Expected lookup failures. Partner houses mistype slugs and send stale
// subids all the time; these are normal rejections, not server faults.
var (
	ErrHouseNotFound     = errors.New("partner house not found")
	ErrAffiliateNotFound = errors.New("affiliate not found")
	ErrDuplicatePostback = errors.New("duplicate postback")
)
