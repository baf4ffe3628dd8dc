package menus

import (
	"context"
	"fmt"
	"sort"

	"github.com/gatewarden/gatewarden/internal/access"
	"github.com/gatewarden/gatewarden/internal/shared"
)

// Repository defines data access methods for the menu forest.
type Repository interface {
	List(ctx context.Context, req ListMenusRequest) ([]MenuWithParent, int, error)
	ListAll(ctx context.Context) ([]Menu, error)
	Get(ctx context.Context, id int64) (Menu, error)
	Create(ctx context.Context, menu Menu) (Menu, error)
	Update(ctx context.Context, menu Menu) (Menu, error)
	Reparent(ctx context.Context, id int64, parentID *int64, levels map[int64]int) error
	Delete(ctx context.Context, id int64) error
	CountChildren(ctx context.Context, id int64) (int, error)
}

// AccessSource resolves the viewable permission objects of a role.
type AccessSource interface {
	ViewableFlags(ctx context.Context, roleID int64) (map[int64]access.Flags, error)
}

// Service handles menu hierarchy business logic.
type Service struct {
	repo   Repository
	access AccessSource
}

// NewService builds a Service instance.
func NewService(repo Repository, accessSource AccessSource) *Service {
	return &Service{repo: repo, access: accessSource}
}

// List returns the paginated flat listing with parent names attached.
func (s *Service) List(ctx context.Context, req ListMenusRequest) ([]MenuWithParent, shared.Pagination, error) {
	rows, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return rows, shared.NewPagination(req.Page, req.Limit, total), nil
}

// Get fetches a single menu node.
func (s *Service) Get(ctx context.Context, id int64) (Menu, error) {
	menu, err := s.repo.Get(ctx, id)
	if err != nil {
		return Menu{}, fmt.Errorf("%w: menu not found", shared.ErrNotFound)
	}
	return menu, nil
}

// Create inserts a menu node. The level is computed from the parent at write
// time and stored.
func (s *Service) Create(ctx context.Context, req CreateMenuRequest) (Menu, error) {
	level := 1
	if req.ParentID != nil {
		parent, err := s.repo.Get(ctx, *req.ParentID)
		if err != nil {
			return Menu{}, fmt.Errorf("%w: parent menu not found", shared.ErrNotFound)
		}
		level = parent.Level + 1
	}
	status := req.Status
	if status == "" {
		status = StatusActive
	}
	return s.repo.Create(ctx, Menu{
		ParentID:    req.ParentID,
		Name:        req.Name,
		Path:        req.Path,
		OrderNumber: req.OrderNumber,
		Level:       level,
		Status:      status,
	})
}

// Update applies name, path, ordering and status changes. Reparenting is a
// separate operation because it must rewrite derived levels.
func (s *Service) Update(ctx context.Context, id int64, req UpdateMenuRequest) (Menu, error) {
	menu, err := s.repo.Get(ctx, id)
	if err != nil {
		return Menu{}, fmt.Errorf("%w: menu not found", shared.ErrNotFound)
	}
	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.Path != nil {
		menu.Path = req.Path
	}
	if req.OrderNumber != nil {
		menu.OrderNumber = *req.OrderNumber
	}
	if req.Status != nil {
		menu.Status = *req.Status
	}
	return s.repo.Update(ctx, menu)
}

// Reparent moves a node under a new parent (or to the root set). The parent
// graph must stay acyclic: the new parent may not be the node itself nor any
// of its descendants. Cycles can only be introduced through the new parent's
// ancestor chain, so the check is an O(depth) walk over an in-memory index
// built from one query. Levels of the node AND its whole subtree are
// recomputed in the same transaction.
func (s *Service) Reparent(ctx context.Context, id int64, req ReparentMenuRequest) (Menu, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return Menu{}, err
	}
	index := newForestIndex(all)

	node, ok := index.byID[id]
	if !ok {
		return Menu{}, fmt.Errorf("%w: menu not found", shared.ErrNotFound)
	}

	newLevel := 1
	if req.ParentID != nil {
		parentID := *req.ParentID
		if parentID == id {
			return Menu{}, fmt.Errorf("%w: menu cannot be its own parent", shared.ErrBadRequest)
		}
		parent, ok := index.byID[parentID]
		if !ok {
			return Menu{}, fmt.Errorf("%w: parent menu not found", shared.ErrNotFound)
		}
		if index.isDescendant(parentID, id) {
			return Menu{}, fmt.Errorf("%w: cannot set parent to a descendant menu (circular reference)", shared.ErrBadRequest)
		}
		newLevel = parent.Level + 1
	}

	levels := index.subtreeLevels(id, newLevel)
	if err := s.repo.Reparent(ctx, id, req.ParentID, levels); err != nil {
		return Menu{}, err
	}

	node.ParentID = req.ParentID
	node.Level = newLevel
	return node, nil
}

// Delete removes a node. Deletion is blocked while children exist; subtrees
// are never deleted implicitly.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("%w: menu not found", shared.ErrNotFound)
	}
	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: cannot delete menu, it has %d child menu(s)", shared.ErrConflict, children)
	}
	return s.repo.Delete(ctx, id)
}

// Tree builds the nested hierarchy for nodes matching the status filter.
// It is a pure function of current state: one snapshot query, then an
// in-memory build with children ordered by order_number.
func (s *Service) Tree(ctx context.Context, status string) ([]*Node, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildForest(all, func(m Menu) bool {
		return status == "" || m.Status == status
	}, nil), nil
}

// AccessibleTree builds the hierarchy restricted to active menus the role may
// view, attaching each node's resolved permission object. Accessible nodes
// whose ancestors are not themselves viewable are unreachable and omitted.
func (s *Service) AccessibleTree(ctx context.Context, roleID int64) ([]*Node, error) {
	flags, err := s.access.ViewableFlags(ctx, roleID)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildForest(all, func(m Menu) bool {
		if m.Status != StatusActive {
			return false
		}
		_, ok := flags[m.ID]
		return ok
	}, flags), nil
}

// forestIndex is the in-memory adjacency index built once per call, avoiding
// one storage round trip per node.
type forestIndex struct {
	byID     map[int64]Menu
	children map[int64][]int64
}

func newForestIndex(all []Menu) *forestIndex {
	idx := &forestIndex{
		byID:     make(map[int64]Menu, len(all)),
		children: make(map[int64][]int64),
	}
	for _, m := range all {
		idx.byID[m.ID] = m
		if m.ParentID != nil {
			idx.children[*m.ParentID] = append(idx.children[*m.ParentID], m.ID)
		}
	}
	return idx
}

// isDescendant walks the ancestor chain upward from candidate, reporting
// whether ancestor appears on it.
func (idx *forestIndex) isDescendant(candidate, ancestor int64) bool {
	seen := make(map[int64]struct{})
	current := idx.byID[candidate]
	for current.ParentID != nil {
		parentID := *current.ParentID
		if parentID == ancestor {
			return true
		}
		if _, cycle := seen[parentID]; cycle {
			return false
		}
		seen[parentID] = struct{}{}
		next, ok := idx.byID[parentID]
		if !ok {
			return false
		}
		current = next
	}
	return false
}

// subtreeLevels computes the new level of the node and every descendant.
func (idx *forestIndex) subtreeLevels(id int64, level int) map[int64]int {
	levels := map[int64]int{id: level}
	queue := []int64{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range idx.children[current] {
			levels[child] = levels[current] + 1
			queue = append(queue, child)
		}
	}
	return levels
}

// buildForest attaches filtered children to filtered parents, both ordered by
// order_number. A node failing the filter prunes its whole subtree.
func buildForest(all []Menu, keep func(Menu) bool, flags map[int64]access.Flags) []*Node {
	childrenOf := make(map[int64][]Menu)
	var roots []Menu
	for _, m := range all {
		if !keep(m) {
			continue
		}
		if m.ParentID == nil {
			roots = append(roots, m)
		} else {
			childrenOf[*m.ParentID] = append(childrenOf[*m.ParentID], m)
		}
	}

	var attach func(m Menu) *Node
	attach = func(m Menu) *Node {
		node := &Node{Menu: m, Children: []*Node{}}
		if flags != nil {
			if f, ok := flags[m.ID]; ok {
				perms := f
				node.Permissions = &perms
			}
		}
		kids := childrenOf[m.ID]
		sort.SliceStable(kids, func(i, j int) bool { return kids[i].OrderNumber < kids[j].OrderNumber })
		for _, child := range kids {
			node.Children = append(node.Children, attach(child))
		}
		return node
	}

	sort.SliceStable(roots, func(i, j int) bool { return roots[i].OrderNumber < roots[j].OrderNumber })
	forest := make([]*Node, 0, len(roots))
	for _, root := range roots {
		forest = append(forest, attach(root))
	}
	return forest
}
