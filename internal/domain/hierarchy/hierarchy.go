// Package hierarchy вычисляет уровни, порядок отображения и дерево категорий
// по плоскому списку со ссылками на родителя.
//
// Данные в базе могут быть повреждены (родитель удалён в обход ограничений
// или цикл записан вручную). Такие цепочки не приводят к бесконечной рекурсии:
// категория, на которой обрывается цепочка, считается корневой.
package hierarchy

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/zipzag-catalog/internal/models"
)

// Index отображение id категории на id родителя.
type Index map[uuid.UUID]*uuid.UUID

// NewIndex строит индекс родителей по списку категорий.
func NewIndex(cats []models.Category) Index {
	ix := make(Index, len(cats))
	for i := range cats {
		ix[cats[i].ID] = cats[i].ParentID
	}
	return ix
}

// Levels возвращает уровень каждой категории: 0 для корня, уровень родителя + 1 иначе.
func (ix Index) Levels() map[uuid.UUID]int {
	levels := make(map[uuid.UUID]int, len(ix))

	// обходим в детерминированном порядке, чтобы разрыв цикла не зависел от map
	ids := make([]uuid.UUID, 0, len(ix))
	for id := range ix {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, start := range ids {
		if _, ok := levels[start]; ok {
			continue
		}

		path := []uuid.UUID{start}
		onPath := map[uuid.UUID]struct{}{start: {}}
		base := 0

		for {
			cur := path[len(path)-1]
			parent := ix[cur]
			if parent == nil {
				break
			}
			if _, exists := ix[*parent]; !exists {
				break
			}
			if lvl, ok := levels[*parent]; ok {
				base = lvl + 1
				break
			}
			if _, seen := onPath[*parent]; seen {
				break
			}
			path = append(path, *parent)
			onPath[*parent] = struct{}{}
		}

		for i := len(path) - 1; i >= 0; i-- {
			levels[path[i]] = base + (len(path) - 1 - i)
		}
	}

	return levels
}

// TreeParent возвращает родителя категории в отображаемом дереве.
// Для корней и категорий с оборванной цепочкой возвращает false.
func (ix Index) TreeParent(id uuid.UUID, levels map[uuid.UUID]int) (uuid.UUID, bool) {
	parent := ix[id]
	if parent == nil {
		return uuid.Nil, false
	}
	if _, exists := ix[*parent]; !exists {
		return uuid.Nil, false
	}
	if levels[id] == 0 || levels[id] != levels[*parent]+1 {
		return uuid.Nil, false
	}
	return *parent, true
}

// WouldCreateCycle сообщает, станет ли категория id своим предком,
// если назначить ей родителя newParent. Назначение самой себя тоже цикл.
func (ix Index) WouldCreateCycle(id, newParent uuid.UUID) bool {
	visited := make(map[uuid.UUID]struct{})
	cur := newParent
	for {
		if cur == id {
			return true
		}
		if _, seen := visited[cur]; seen {
			// цикл выше по цепочке, в который id не входит
			return false
		}
		visited[cur] = struct{}{}

		parent, exists := ix[cur]
		if !exists || parent == nil {
			return false
		}
		cur = *parent
	}
}

// PreOrder возвращает категории с заполненным Level в порядке отображения:
// каждая категория сразу после родителя, соседи по имени без учёта регистра, затем по id.
func PreOrder(cats []models.Category) []models.Category {
	roots := Tree(cats)
	out := make([]models.Category, 0, len(cats))

	var walk func(nodes []*models.CategoryNode)
	walk = func(nodes []*models.CategoryNode) {
		for _, n := range nodes {
			out = append(out, n.Category)
			walk(n.Children)
		}
	}
	walk(roots)

	return out
}

// Tree строит вложенное дерево категорий. Порядок соседей тот же, что в PreOrder.
func Tree(cats []models.Category) []*models.CategoryNode {
	ix := NewIndex(cats)
	levels := ix.Levels()

	nodes := make(map[uuid.UUID]*models.CategoryNode, len(cats))
	for i := range cats {
		c := cats[i]
		c.Level = levels[c.ID]
		nodes[c.ID] = &models.CategoryNode{Category: c, Children: []*models.CategoryNode{}}
	}

	var roots []*models.CategoryNode
	for i := range cats {
		n := nodes[cats[i].ID]
		if parent, ok := ix.TreeParent(n.ID, levels); ok {
			p := nodes[parent]
			p.Children = append(p.Children, n)
			continue
		}
		roots = append(roots, n)
	}

	sortNodes(roots)
	for _, n := range nodes {
		sortNodes(n.Children)
	}

	if roots == nil {
		roots = []*models.CategoryNode{}
	}
	return roots
}

func sortNodes(nodes []*models.CategoryNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := strings.ToLower(nodes[i].Name), strings.ToLower(nodes[j].Name)
		if a != b {
			return a < b
		}
		return nodes[i].ID.String() < nodes[j].ID.String()
	})
}
