package catalog

import "github.com/chunwon/market/services/recommendation-service/internal/domain"

// seedProducts mirrors the storefront's demo assortment so a dev instance
// serves the same catalog the frontend renders.
func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "스테인리스 텀블러 500ml 보온보냉", Price: 3000, ImageURL: "/placeholder-product.jpg", Rating: 4.5, ReviewCount: 1234, CategoryID: "주방"},
		{ID: 2, Name: "다용도 수납박스 대형 정리함", Price: 5000, ImageURL: "/placeholder-product.jpg", Rating: 4.2, ReviewCount: 892, CategoryID: "수납"},
		{ID: 3, Name: "극세사 청소포 10매 물걸레 청소", Price: 2000, ImageURL: "/placeholder-product.jpg", Rating: 4.8, ReviewCount: 2156, CategoryID: "청소"},
		{ID: 4, Name: "형광펜 세트 5색 파스텔톤 학용품", Price: 1000, ImageURL: "/placeholder-product.jpg", Rating: 4.0, ReviewCount: 456, CategoryID: "문구"},
		{ID: 5, Name: "LED 무드등 USB 충전식 조명", Price: 5000, ImageURL: "/placeholder-product.jpg", Rating: 4.6, ReviewCount: 678, CategoryID: "인테리어"},
		{ID: 6, Name: "실리콘 주방장갑 내열 오븐장갑", Price: 3000, ImageURL: "/placeholder-product.jpg", Rating: 4.3, ReviewCount: 345, CategoryID: "주방"},
		{ID: 7, Name: "보습 핸드크림 시어버터 50ml", Price: 2000, ImageURL: "/placeholder-product.jpg", Rating: 4.7, ReviewCount: 1567, CategoryID: "뷰티"},
		{ID: 8, Name: "접이식 빨래건조대 스탠드형", Price: 5000, ImageURL: "/placeholder-product.jpg", Rating: 4.1, ReviewCount: 234, CategoryID: "생활"},
		{ID: 9, Name: "미니 가습기 USB 데스크 사무실용", Price: 5000, ImageURL: "/placeholder-product.jpg", Rating: 4.4, ReviewCount: 890, CategoryID: "계절"},
		{ID: 10, Name: "트래블 파우치 세트 여행용 정리백", Price: 3000, ImageURL: "/placeholder-product.jpg", Rating: 4.5, ReviewCount: 567, CategoryID: "수납"},
		{ID: 11, Name: "천원마켓 마스킹 테이프 세트 데코", Price: 1000, ImageURL: "/placeholder-product.jpg", Rating: 4.9, ReviewCount: 3210, CategoryID: "문구"},
		{ID: 12, Name: "스프레이 물병 공병 화장품 용기", Price: 1000, ImageURL: "/placeholder-product.jpg", Rating: 4.2, ReviewCount: 789, CategoryID: "뷰티"},
	}
}
