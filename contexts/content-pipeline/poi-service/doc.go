// Package poiservice owns the point-of-interest catalog: the editorial
// lifecycle (draft, validated, published, archived) and the poi.* events
// the rest of the content pipeline consumes.
package poiservice
