package service

import "github.com/liliang-cn/doclens/internal/domain"

// PaginateSection slices one local page out of a section. A page outside
// [1, TotalPages] yields an empty item slice with the totals still filled in.
func PaginateSection(section domain.Section, items []domain.TextItem, page, pageSize int) *domain.SectionPage {
	if pageSize < 1 {
		pageSize = 1
	}
	result := &domain.SectionPage{
		Section:    section,
		Items:      []domain.TextItem{},
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(items),
		TotalPages: TotalPages(len(items), pageSize),
	}
	if page < 1 {
		return result
	}
	if page > result.TotalPages {
		result.Start, result.End = len(items), len(items)
		return result
	}

	start := (page - 1) * pageSize
	end := len(items)
	if end-start > pageSize {
		end = start + pageSize
	}
	result.Items = append(result.Items, items[start:end]...)
	result.Start, result.End = start, end
	return result
}

// SectionPagingFor derives paging for every section from its own length.
func SectionPagingFor(meta *domain.DetailsMetadata, pageSize int) map[domain.Section]domain.SectionPaging {
	out := make(map[domain.Section]domain.SectionPaging, len(domain.Sections))
	for _, s := range domain.Sections {
		n := len(meta.Items(s))
		out[s] = domain.SectionPaging{
			TotalItems: n,
			PageSize:   pageSize,
			TotalPages: TotalPages(n, pageSize),
		}
	}
	return out
}
