package scraper

import "github.com/andybalholm/cascadia"

// CSS selectors for the movie site's markup. Compiled once so a typo
// fails at startup rather than on the first request.
var (
	selFilmItem     = cascadia.MustCompile(".film-item")
	selItemAnchor   = cascadia.MustCompile("a")
	selItemImage    = cascadia.MustCompile("a > img")
	selFilmContent  = cascadia.MustCompile(".film-content")
	selContentPara  = cascadia.MustCompile(".film-content p")
	selImage        = cascadia.MustCompile("img")
	selPosterAnchor = cascadia.MustCompile(".poster a")
	selInfoList     = cascadia.MustCompile(".info-y")
	selInfoItem     = cascadia.MustCompile(".info-y li")
	selLabel        = cascadia.MustCompile("label")
	selSpan         = cascadia.MustCompile("span")
)

// VideoSelector matches the player's <video> element on a watch page.
const VideoSelector = ".jw-video"
