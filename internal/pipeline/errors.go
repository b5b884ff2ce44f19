package pipeline

import "fmt"

// Site identifies the pipeline stage where a failure happened.
type Site string

const (
	SitePoll      Site = "poll"
	SiteLocate    Site = "locate"
	SiteArchive   Site = "archive"
	SiteClassify  Site = "classify"
	SiteParse     Site = "parse"
	SiteReconcile Site = "reconcile"
	SiteDecode    Site = "decode"
	SiteStage     Site = "stage"
	SitePublish   Site = "publish"
)

// Error tags a failure with the stage that produced it. Validation and
// format failures resolve to outcome tags inside the flows; only
// infrastructure causes travel upward wrapped in this type.
type Error struct {
	Site  Site
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Site, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func siteErr(site Site, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Site: site, Cause: cause}
}
