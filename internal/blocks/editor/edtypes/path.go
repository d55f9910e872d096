package edtypes

import (
	"fmt"
	"slices"
)

// Path адрес узла: индексы детей начиная от корня документа.
type Path []int

func (p Path) String() string {
	return fmt.Sprint([]int(p))
}

func (p Path) Copy() Path {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// Compare возвращает -1, 0 или 1. Предки и потомки считаются равными.
func (p Path) Compare(other Path) int {
	n := min(len(p), len(other))
	for i := 0; i < n; i++ {
		if p[i] < other[i] {
			return -1
		}
		if p[i] > other[i] {
			return 1
		}
	}
	return 0
}

func (p Path) IsBefore(other Path) bool {
	return p.Compare(other) == -1
}

func (p Path) IsAfter(other Path) bool {
	return p.Compare(other) == 1
}

// IsAncestor p строгий предок other.
func (p Path) IsAncestor(other Path) bool {
	return len(p) < len(other) && p.Compare(other) == 0
}

func (p Path) IsDescendant(other Path) bool {
	return other.IsAncestor(p)
}

func (p Path) IsParent(other Path) bool {
	return len(p)+1 == len(other) && p.Compare(other) == 0
}

func (p Path) IsChild(other Path) bool {
	return other.IsParent(p)
}

// IsSibling пути с общим родителем.
func (p Path) IsSibling(other Path) bool {
	if len(p) != len(other) || len(p) == 0 {
		return false
	}
	return p[:len(p)-1].Equal(other[:len(other)-1]) && p[len(p)-1] != other[len(other)-1]
}

// EndsBefore последний индекс p меньше индекса other на том же уровне при общем префиксе.
func (p Path) EndsBefore(other Path) bool {
	if len(p) == 0 {
		return false
	}
	i := len(p) - 1
	if len(other) <= i {
		return false
	}
	return p[:i].Equal(other[:i]) && p[i] < other[i]
}

// EndsAfter последний индекс p больше индекса other на том же уровне при общем префиксе.
func (p Path) EndsAfter(other Path) bool {
	if len(p) == 0 {
		return false
	}
	i := len(p) - 1
	if len(other) <= i {
		return false
	}
	return p[:i].Equal(other[:i]) && p[i] > other[i]
}

func (p Path) EndsAt(other Path) bool {
	if len(p) == 0 {
		return false
	}
	i := len(p) - 1
	if len(other) <= i {
		return false
	}
	return p[:i].Equal(other[:i]) && p[i] == other[i]
}

func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1].Copy()
}

func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

func (p Path) Next() Path {
	if len(p) == 0 {
		return nil
	}
	res := p.Copy()
	res[len(res)-1]++
	return res
}

func (p Path) HasPrevious() bool {
	return len(p) > 0 && p[len(p)-1] > 0
}

func (p Path) Previous() Path {
	if !p.HasPrevious() {
		return nil
	}
	res := p.Copy()
	res[len(res)-1]--
	return res
}

// Child путь к ребенку с индексом i.
func (p Path) Child(i ...int) Path {
	res := make(Path, 0, len(p)+len(i))
	res = append(res, p...)
	return append(res, i...)
}

// Common общий предок (включительно).
func (p Path) Common(other Path) Path {
	var res Path
	for i := 0; i < len(p) && i < len(other); i++ {
		if p[i] != other[i] {
			break
		}
		res = append(res, p[i])
	}
	return res
}

// Ancestors все предки от корня, без самого пути.
func (p Path) Ancestors() []Path {
	res := make([]Path, 0, len(p))
	for i := 0; i < len(p); i++ {
		res = append(res, p[:i].Copy())
	}
	return res
}
