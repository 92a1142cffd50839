// Package posts owns the post domain: normalisation and validation of post
// records, the list utilities (filter, sort, paginate, related, adjacent),
// and the repositories that persist posts.json plus one Markdown file per
// slug. Service layers the admin write rules on top of a Repository.
package posts
