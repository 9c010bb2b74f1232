package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/nullsam/qr-menu/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func valJSON(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (r *Repo) UpsertBusiness(ctx context.Context, b domain.Business) error {
	_, err := r.db.ExecContext(ctx, upsertBusinessSQL,
		b.Slug,
		b.Name,
		b.Theme,
		b.Colors.Primary,
		b.Colors.Secondary,
		valJSON(b.Languages),
		valJSON(b.Currencies),
		valJSON(b.Features),
		valJSON(b.Socials),
		valJSON(b.Hours),
		string(b.RawJSON),
	)
	return err
}

func (r *Repo) UpsertCategories(ctx context.Context, slug string, cs []domain.Category) error {
	if len(cs) == 0 {
		return nil
	}
	values := make([]string, 0, len(cs))
	args := make([]any, 0, len(cs)*4)
	for _, c := range cs {
		values = append(values, "(?,?,?,?)")
		args = append(args, slug, c.ID, valJSON(c.Names), c.Sort)
	}
	sqlStr := insertCategoriesPrefix + strings.Join(values, ",") + insertCategoriesOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) UpsertItems(ctx context.Context, slug string, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	values := make([]string, 0, len(items))
	args := make([]any, 0, len(items)*8)
	for _, it := range items {
		values = append(values, "(?,?,?,?,?,?,?,?)")
		var discount any
		if it.Discount != nil {
			discount = valJSON(it.Discount)
		}
		args = append(args,
			slug,
			it.ID,
			it.CategoryID,
			valJSON(it.Titles),
			valJSON(it.Prices),
			discount, // NULL when absent
			it.Image,
			string(it.RawJSON),
		)
	}
	sqlStr := insertItemsPrefix + strings.Join(values, ",") + insertItemsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) UpsertTranslations(ctx context.Context, slug, lang string, table map[string]string) error {
	_, err := r.db.ExecContext(ctx, upsertTranslationsSQL, slug, lang, valJSON(table))
	return err
}

func (r *Repo) LogMiss(ctx context.Context, slug string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, slug, status, reason)
	return err
}

func (r *Repo) GetBusiness(ctx context.Context, slug string) (domain.Business, error) {
	row := r.db.QueryRowContext(ctx, getBusinessSQL, slug)

	var b domain.Business
	var name, theme, primary, secondary sql.NullString
	var langsJSON, cursJSON, featJSON, socialsJSON, hoursJSON []byte

	if err := row.Scan(&b.Slug, &name, &theme, &primary, &secondary, &langsJSON, &cursJSON, &featJSON, &socialsJSON, &hoursJSON); err != nil {
		if err == sql.ErrNoRows {
			return domain.Business{}, domain.ErrNotFound
		}
		return domain.Business{}, err
	}
	b.Name = name.String
	b.Theme = theme.String
	b.Colors = domain.Colors{Primary: primary.String, Secondary: secondary.String}
	_ = json.Unmarshal(langsJSON, &b.Languages)
	_ = json.Unmarshal(cursJSON, &b.Currencies)
	_ = json.Unmarshal(featJSON, &b.Features)
	_ = json.Unmarshal(socialsJSON, &b.Socials)
	_ = json.Unmarshal(hoursJSON, &b.Hours)
	return b, nil
}

func (r *Repo) ListCategories(ctx context.Context, slug string) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesSQL, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		var namesJSON []byte
		if err := rows.Scan(&c.ID, &namesJSON, &c.Sort); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(namesJSON, &c.Names)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ListItems(ctx context.Context, slug string) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, listItemsSQL, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Item
	for rows.Next() {
		var it domain.Item
		var titlesJSON, pricesJSON []byte
		var discountJSON sql.RawBytes
		var image sql.NullString
		if err := rows.Scan(&it.ID, &it.CategoryID, &titlesJSON, &pricesJSON, &discountJSON, &image); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(titlesJSON, &it.Titles)
		_ = json.Unmarshal(pricesJSON, &it.Prices)
		if len(discountJSON) > 0 {
			var d domain.Discount
			if err := json.Unmarshal(discountJSON, &d); err == nil && d.Kind != "" {
				it.Discount = &d
			}
		}
		it.Image = image.String
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) GetTranslations(ctx context.Context, slug, lang string) (map[string]string, error) {
	row := r.db.QueryRowContext(ctx, getTranslationsSQL, slug, lang)

	var entriesJSON []byte
	if err := row.Scan(&entriesJSON); err != nil {
		if err == sql.ErrNoRows {
			// missing table is an empty table, not an error
			return map[string]string{}, nil
		}
		return nil, err
	}
	table := map[string]string{}
	_ = json.Unmarshal(entriesJSON, &table)
	return table, nil
}
