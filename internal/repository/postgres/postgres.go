// Package postgres implements the domain repository interfaces over pgx.
package postgres

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// scopeFilter is the WHERE fragment backing domain.Scope: the first argument
// is the bypass flag, the second the owner id. Queries embed it with their
// own placeholder numbers.
const scopeFilter = "($1::boolean OR user_id = $2)"

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func textOrNil(s *string) pgtype.Text {
	var t pgtype.Text
	if s != nil {
		t.String = *s
		t.Valid = true
	}
	return t
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func int4OrNil(v *int32) pgtype.Int4 {
	var i pgtype.Int4
	if v != nil {
		i.Int32 = *v
		i.Valid = true
	}
	return i
}

func int4Ptr(i pgtype.Int4) *int32 {
	if !i.Valid {
		return nil
	}
	v := i.Int32
	return &v
}

func numericOrNil(d *decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if d == nil {
		return num, nil
	}
	return decimalToPgNumeric(*d)
}

func numericPtr(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := pgNumericToDecimal(n)
	return &d
}
