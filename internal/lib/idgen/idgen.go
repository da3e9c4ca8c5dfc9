// Package idgen выдаёт идентификаторы заказов, платежей и заявок на основе snowflake.
// Идентификаторы монотонно растут внутри узла, поэтому сортировка по ним
// совпадает с порядком создания.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator выдаёт snowflake-идентификаторы.
type Generator struct {
	node *snowflake.Node
}

// New создаёт генератор для узла с номером node (0..1023).
func New(node int64) (*Generator, error) {
	const op = "idgen.New"
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Generator{node: n}, nil
}

// Next возвращает следующий идентификатор в десятичной записи.
func (g *Generator) Next() string {
	return g.node.Generate().String()
}

// Prefixed возвращает идентификатор вида "<prefix>_<id>", например order_1789...
func (g *Generator) Prefixed(prefix string) string {
	return prefix + "_" + g.Next()
}
