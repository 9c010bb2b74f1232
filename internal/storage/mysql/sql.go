package mysql

const upsertBusinessSQL = `
INSERT INTO businesses
  (slug, name, theme, primary_color, secondary_color, languages, currencies, features, socials, hours, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name            = VALUES(name),
  theme           = VALUES(theme),
  primary_color   = VALUES(primary_color),
  secondary_color = VALUES(secondary_color),
  languages       = VALUES(languages),
  currencies      = VALUES(currencies),
  features        = VALUES(features),
  socials         = VALUES(socials),
  hours           = VALUES(hours),
  raw             = VALUES(raw),
  updated_at      = CURRENT_TIMESTAMP
`

const insertCategoriesPrefix = "INSERT INTO categories\n  (business_slug, id, names, sort)\nVALUES "

const insertCategoriesOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  names = VALUES(names),\n" +
	"  sort  = VALUES(sort)\n"

const insertItemsPrefix = "INSERT INTO items\n  (business_slug, id, category_id, titles, prices, discount, image, raw)\nVALUES "

const insertItemsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  category_id = VALUES(category_id),\n" +
	"  titles      = VALUES(titles),\n" +
	"  prices      = VALUES(prices),\n" +
	"  discount    = VALUES(discount),\n" +
	"  image       = VALUES(image),\n" +
	"  raw         = VALUES(raw)\n"

const upsertTranslationsSQL = `
INSERT INTO translations (business_slug, lang, entries)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE entries = VALUES(entries)
`

const insertMissSQL = `
INSERT INTO ingest_misses (slug, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getBusinessSQL = `
SELECT slug, name, theme, primary_color, secondary_color, languages, currencies, features, socials, hours
FROM businesses
WHERE slug = ?
`

// Section order is meaningful; sort ascending with id as a stable tiebreak.
const listCategoriesSQL = `
SELECT id, names, sort
FROM categories
WHERE business_slug = ?
ORDER BY sort ASC, id ASC
`

const listItemsSQL = `
SELECT id, category_id, titles, prices, discount, image
FROM items
WHERE business_slug = ?
ORDER BY category_id ASC, id ASC
`

const getTranslationsSQL = `
SELECT entries
FROM translations
WHERE business_slug = ? AND lang = ?
`
