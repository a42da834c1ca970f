package views

import (
	"net/url"

	"github.com/briangreenhill/coinpulse/internal/format"
	"github.com/briangreenhill/coinpulse/internal/table"
)

// MoverColumns are the movers table columns, with prices in currency
func MoverColumns(currency string) []table.Column[Mover] {
	return []table.Column[Mover]{
		{Header: "Name", CellClass: "name-cell", Cell: func(m Mover) table.Cell {
			return table.Cell{Text: m.Name, Href: "/coins/" + url.PathEscape(m.ID), Image: m.Image}
		}},
		{Header: "Price", CellClass: "price-cell", Cell: func(m Mover) table.Cell {
			return table.Cell{Text: format.Currency(m.Price, currency)}
		}},
		{Header: "24h Change", CellClass: "change-cell", Cell: func(m Mover) table.Cell {
			c := table.Cell{Text: format.Percentage(m.Change24h), Trend: table.TrendDown}
			if m.Up() {
				c.Trend = table.TrendUp
			}
			return c
		}},
		{Header: "Volume (24h)", CellClass: "price-cell", Cell: func(m Mover) table.Cell {
			return table.Cell{Text: format.Currency(m.Volume24h, currency)}
		}},
		{Header: "Rank", CellClass: "price-cell", Cell: func(m Mover) table.Cell {
			return table.Cell{Text: format.Rank(m.Rank)}
		}},
	}
}

// MoverTable renders the list for tab
func MoverTable(lists MoverLists, tab Tab) table.Table {
	t := table.Build(lists.For(tab), MoverColumns(lists.Currency), func(m Mover) string { return m.ID })
	t.Class = "top-gainers-losers-table"
	return t
}
