// Package wiki harvests pages, blog posts and their comments from a
// wiki-style content service over its REST API.
//
// Listings use offset/limit pagination (start/limit) and end on a short
// page. Bodies are requested in the rendered "view" representation so the
// HTML normaliser sees what a browser would.
package wiki
