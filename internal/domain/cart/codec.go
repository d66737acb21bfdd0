package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// EncodeItems serializes line items to the compact JSON wire form used for
// persisted cart state. Prices travel as strings to keep decimal exactness.
func EncodeItems(items []LineItem) []byte {
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, li := range items {
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Str(li.Product.ID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(li.Product.Name) })
				e.Field("category", func(e *jx.Encoder) { e.Str(li.Product.Category) })
				e.Field("price", func(e *jx.Encoder) { e.Str(li.Product.Price.String()) })
				e.Field("image", func(e *jx.Encoder) { e.Str(li.Product.Image) })
				e.Field("qty", func(e *jx.Encoder) { e.Int(li.Quantity) })
			})
		}
	})
	return e.Bytes()
}

// DecodeItems parses the wire form produced by EncodeItems.
func DecodeItems(data []byte) ([]LineItem, error) {
	var items []LineItem
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		var li LineItem
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "id":
				v, err := d.Str()
				li.Product.ID = v
				return err
			case "name":
				v, err := d.Str()
				li.Product.Name = v
				return err
			case "category":
				v, err := d.Str()
				li.Product.Category = v
				return err
			case "price":
				v, err := d.Str()
				if err != nil {
					return err
				}
				price, err := decimal.NewFromString(v)
				if err != nil {
					return errors.Wrap(err, "parse price")
				}
				li.Product.Price = price
				return nil
			case "image":
				v, err := d.Str()
				li.Product.Image = v
				return err
			case "qty":
				v, err := d.Int()
				li.Quantity = v
				return err
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		items = append(items, li)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart items")
	}
	return items, nil
}
