package scraper

// scrapeScript runs inside the page context and returns the versioned raw
// payload as a JSON string. It only reports what the page declares; all
// precedence fallbacks, URL resolution, and icon defaulting happen host-side
// so the script stays a thin, schema-stable probe.
//
// Generator fingerprints run only when no explicit generator meta exists,
// in fixed priority order, stopping at the first match.
const scrapeScript = `() => {
	const attrOf = (selector, name) => {
		const el = document.querySelector(selector);
		return el ? (el.getAttribute(name) || '') : '';
	};
	const meta = (name) => attrOf('meta[name="' + name + '"]', 'content');
	const prop = (p) => attrOf('meta[property="' + p + '"]', 'content');

	const icons = [];
	const iconSelector = 'link[rel~="icon"], link[rel="shortcut icon"], link[rel^="apple-touch-icon"]';
	document.querySelectorAll(iconSelector).forEach((link) => {
		icons.push({
			href: link.getAttribute('href') || '',
			sizes: link.getAttribute('sizes') || '',
			rel: link.getAttribute('rel') || '',
			rawTag: link.outerHTML
		});
	});

	let generator = meta('generator');
	if (!generator) {
		const fingerprints = [
			['Next.js', () => window.__NEXT_DATA__ || document.querySelector('script#__NEXT_DATA__')],
			['Remix', () => window.__remixContext],
			['Nuxt', () => window.__NUXT__ || document.querySelector('#__nuxt')],
			['Gatsby', () => window.___gatsby || document.querySelector('#___gatsby')],
			['Svelte', () => document.querySelector('[class*="svelte-"]')],
			['Angular', () => document.querySelector('[ng-version]')],
			['Vue', () => window.__VUE__ || document.querySelector('[data-v-app]')],
			['React', () => document.querySelector('[data-reactroot]') ||
				(document.getElementById('root') && document.getElementById('root')._reactRootContainer)]
		];
		for (const [name, probe] of fingerprints) {
			let hit = false;
			try { hit = !!probe(); } catch (e) { hit = false; }
			if (hit) { generator = name; break; }
		}
	}

	let backgroundColor = '#FFFFFF';
	let el = document.body;
	while (el) {
		const bg = window.getComputedStyle(el).backgroundColor;
		if (bg && bg !== 'transparent' && bg !== 'rgba(0, 0, 0, 0)') {
			backgroundColor = bg;
			break;
		}
		el = el.parentElement;
	}

	return JSON.stringify({
		schemaVersion: 1,
		url: location.href,
		documentTitle: document.title || '',
		metaDescription: meta('description'),
		ogTitle: prop('og:title'),
		ogDescription: prop('og:description'),
		ogImage: prop('og:image'),
		ogImageAlt: prop('og:image:alt'),
		twitterTitle: meta('twitter:title') || prop('twitter:title'),
		twitterDescription: meta('twitter:description') || prop('twitter:description'),
		twitterImage: meta('twitter:image') || prop('twitter:image'),
		twitterImageSrc: meta('twitter:image:src') || prop('twitter:image:src'),
		twitterImageAlt: meta('twitter:image:alt') || prop('twitter:image:alt'),
		icons: icons,
		canonical: attrOf('link[rel="canonical"]', 'href'),
		robots: meta('robots'),
		googlebot: meta('googlebot'),
		keywords: meta('keywords'),
		generator: generator,
		language: document.documentElement.getAttribute('lang') || '',
		hasManifest: !!document.querySelector('link[rel="manifest"]'),
		hasViewport: !!document.querySelector('meta[name="viewport"]'),
		backgroundColor: backgroundColor
	});
}`

// htmlDumpScript serializes the live document for the static scraper mode.
const htmlDumpScript = `() => document.documentElement.outerHTML`
