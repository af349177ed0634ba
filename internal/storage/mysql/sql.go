package mysql

const findCitySQL = `SELECT id, name_es, slug FROM city WHERE slug = ? LIMIT 1`

const listCitiesSQL = `SELECT id, name_es, slug FROM city ORDER BY name_es ASC`

const findCategorySQL = `SELECT id, name_es, slug FROM category WHERE slug = ? LIMIT 1`

const listCategoriesSQL = `SELECT id, name_es, slug FROM category ORDER BY name_es ASC`

// Served by ix_business_listing (city_id, category_id, is_approved, name).
const listApprovedBusinessesSQL = `
SELECT id, name, slug, description, logo_url, cover_image_url, is_approved
FROM business
WHERE city_id = ? AND category_id = ? AND is_approved = TRUE
ORDER BY name ASC
`

// -----------------------------------------------------------------------------
// DETAIL
// -----------------------------------------------------------------------------

// City and category are LEFT JOINed so a dangling reference comes back as NULLs
// instead of silently dropping the row. At most one promotion is joined,
// active ones first.
const findApprovedBusinessSQL = `
SELECT
  b.id, b.name, b.slug, b.description, b.logo_url, b.cover_image_url,
  b.phone, b.whatsapp, b.website_url, b.address, b.lat, b.lng,
  b.city_id, b.category_id, b.is_approved,
  c.id, c.name_es, c.slug,
  k.id, k.name_es, k.slug,
  p.id, p.title, p.` + "`text`" + `, p.starts_at, p.ends_at, p.is_active
FROM business b
LEFT JOIN city c     ON c.id = b.city_id
LEFT JOIN category k ON k.id = b.category_id
LEFT JOIN promotion p ON p.id = (
  SELECT p2.id FROM promotion p2
  WHERE p2.business_id = b.id
  ORDER BY p2.is_active DESC, p2.starts_at DESC, p2.id
  LIMIT 1
)
WHERE b.city_id = ? AND b.slug = ? AND b.is_approved = TRUE
LIMIT 1
`

const findApprovedBusinessesBySlugSQL = `
SELECT b.id, b.name, b.slug, b.city_id, b.category_id, b.is_approved,
       c.id, c.name_es, c.slug
FROM business b
LEFT JOIN city c ON c.id = b.city_id
WHERE b.slug = ? AND b.is_approved = TRUE
ORDER BY c.name_es ASC
`
